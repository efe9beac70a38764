package main

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// notifyBatch fires one desktop notification per non-empty batch. Failures
// are logged and swallowed: notifications are a courtesy, never a reason to
// disturb delivery.
func notifyBatch(batch DropBatch) {
	if len(batch) == 0 {
		return
	}

	var body string
	if len(batch) == 1 {
		body = batch[0].Name
	} else {
		body = fmt.Sprintf("%s and %d more", batch[0].Name, len(batch)-1)
	}
	title := fmt.Sprintf("%d file(s) dropped", len(batch))

	if err := beeep.Notify(title, body, ""); err != nil {
		Log.Warn("drop notification failed", "error", err)
	}
}
