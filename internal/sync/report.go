package sync

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/agora-sh/agora/internal/api"
)

// ReportStage represents the report dialog's lifecycle state.
type ReportStage string

const (
	ReportClosed          ReportStage = "closed"
	ReportSelectingReason ReportStage = "selecting"
	ReportCustomReason    ReportStage = "custom"
	ReportSubmitting      ReportStage = "submitting"
)

// genericReportError is shown when the server gives no usable message.
const genericReportError = "Could not submit report. Please try again."

// ReportDialog drives the report flow for one post at a time:
//
//	Closed -> SelectingReason -> CustomReason -> Submitting -> Closed
//
// on success, or Submitting -> CustomReason on failure. The only ways
// back to Closed are explicit cancel and success. Submit runs on a
// background goroutine in the UI, so state access is locked.
type ReportDialog struct {
	mu     sync.Mutex
	rec    *Reconciler
	stage  ReportStage
	postID int64
	reason string
	errMsg string
}

// NewReportDialog creates a closed dialog over the given reconciler.
func NewReportDialog(rec *Reconciler) *ReportDialog {
	return &ReportDialog{rec: rec, stage: ReportClosed}
}

// Stage returns the dialog's current stage.
func (d *ReportDialog) Stage() ReportStage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stage
}

// PostID returns the post the dialog is open for.
func (d *ReportDialog) PostID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.postID
}

// Reason returns the reason text as typed so far.
func (d *ReportDialog) Reason() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reason
}

// Err returns the error string shown after a failed submit.
func (d *ReportDialog) Err() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

// Open opens the dialog for a post in the reason-selection stage.
func (d *ReportDialog) Open(postID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stage != ReportClosed {
		return
	}
	d.stage = ReportSelectingReason
	d.postID = postID
	d.reason = ""
	d.errMsg = ""
}

// ChooseReason picks a preset reason and moves to the custom stage where
// it can still be edited.
func (d *ReportDialog) ChooseReason(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stage != ReportSelectingReason {
		return
	}
	d.reason = reason
	d.stage = ReportCustomReason
}

// SetReason replaces the reason text in the custom stage.
func (d *ReportDialog) SetReason(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stage != ReportCustomReason {
		return
	}
	d.reason = reason
}

// Cancel closes the dialog from any open stage except mid-submit.
func (d *ReportDialog) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stage == ReportClosed || d.stage == ReportSubmitting {
		return
	}
	d.stage = ReportClosed
	d.postID = 0
	d.reason = ""
	d.errMsg = ""
}

// Submit sends the report. On success the dialog closes; on failure it
// returns to the custom stage with the server's message (or a generic
// fallback) so the user may retry.
func (d *ReportDialog) Submit(ctx context.Context) error {
	d.mu.Lock()
	if d.stage != ReportCustomReason {
		d.mu.Unlock()
		return nil
	}
	if strings.TrimSpace(d.reason) == "" {
		d.errMsg = "Please enter a reason."
		d.mu.Unlock()
		return ErrEmptyReason
	}
	d.stage = ReportSubmitting
	postID, reason := d.postID, d.reason
	d.mu.Unlock()

	_, err := d.rec.Report(ctx, postID, reason)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.stage = ReportCustomReason
		d.errMsg = reportErrorMessage(err)
		return err
	}
	d.stage = ReportClosed
	d.postID = 0
	d.reason = ""
	d.errMsg = ""
	return nil
}

func reportErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericReportError
}
