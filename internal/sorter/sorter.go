// Package sorter runs the sorting pipeline: for each image in the intake
// folder, ask the classifier where it belongs, create the requested folder
// when the model asks for one, and move the file. Files are processed one at
// a time; any per-file failure is logged and the file stays in intake for a
// future run.
package sorter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"pixsort/internal/history"
	"pixsort/internal/library"
	"pixsort/internal/scan"
	"pixsort/pkg/classifier"
)

// Status says what happened to one intake file.
type Status string

const (
	StatusMoved     Status = "moved"
	StatusSkipped   Status = "skipped"
	StatusWouldMove Status = "would move" // dry-run
)

// Outcome is the result for one intake file.
type Outcome struct {
	FileName      string
	Status        Status
	Folder        string // destination folder, when known
	CreatedFolder string // non-empty when the model had a folder created first
	Reason        string // skip reason, when skipped
}

// Report summarizes one run.
type Report struct {
	RunID          string
	Outcomes       []Outcome
	Moved          int
	Skipped        int
	FoldersCreated int
	Elapsed        time.Duration
}

// Recorder is the slice of the history store the sorter needs.
type Recorder interface {
	Record(ctx context.Context, m history.Move) error
}

// Options tune one run.
type Options struct {
	// DryRun classifies but never creates folders, moves files, or writes
	// the ledger.
	DryRun bool
	// Limit stops after this many files when positive.
	Limit int
	// RequestTimeout bounds each classifier call. Zero means no bound.
	RequestTimeout time.Duration
}

// Sorter wires the scanner, classifier, library, and ledger into the
// per-file pipeline.
type Sorter struct {
	clf  classifier.ImageClassifier
	lib  *library.Library
	hist Recorder // may be nil
}

func New(clf classifier.ImageClassifier, lib *library.Library, hist Recorder) *Sorter {
	return &Sorter{clf: clf, lib: lib, hist: hist}
}

// Run processes every image currently in intakeDir, strictly one at a time.
//
// Only errors that prevent the run from starting at all are returned;
// per-file failures are logged, counted as skips, and leave the file in the
// intake folder.
func (s *Sorter) Run(ctx context.Context, intakeDir string, opts Options) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}

	if err := ensureIntake(intakeDir); err != nil {
		return report, err
	}

	files, err := scan.DiscoverImages(ctx, intakeDir)
	if err != nil {
		return report, fmt.Errorf("failed to scan intake folder %s: %w", intakeDir, err)
	}
	log.Infof("Found %d image(s) to process in %s", len(files), intakeDir)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
		if opts.Limit > 0 && len(report.Outcomes) >= opts.Limit {
			break
		}

		outcome := s.processFile(ctx, report.RunID, file, opts)
		report.Outcomes = append(report.Outcomes, outcome)
		switch outcome.Status {
		case StatusMoved, StatusWouldMove:
			report.Moved++
		case StatusSkipped:
			report.Skipped++
		}
		if outcome.CreatedFolder != "" {
			report.FoldersCreated++
		}
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// processFile runs the classify / create-folder / move steps for one image.
// Every failure path logs and returns a skip outcome, leaving the file where
// it is.
func (s *Sorter) processFile(ctx context.Context, runID string, file scan.FileMeta, opts Options) Outcome {
	log.Infof("Processing %s...", file.Name)
	outcome := Outcome{FileName: file.Name}

	data, err := scan.ReadImage(file.Path)
	if err != nil {
		return skip(outcome, fmt.Sprintf("read failed: %v", err))
	}

	decision, err := s.classify(ctx, file, data, opts)
	if err != nil {
		return skip(outcome, fmt.Sprintf("classification failed: %v", err))
	}
	log.Debugf("Model reply for %s: %s", file.Name, decision.Raw)

	if decision.Action == classifier.ActionCreateFolder {
		if opts.DryRun {
			outcome.Status = StatusWouldMove
			outcome.CreatedFolder = decision.Folder
			outcome.Folder = decision.Folder
			return outcome
		}

		created, err := s.lib.EnsureFolder(decision.Folder)
		if err != nil {
			return skip(outcome, fmt.Sprintf("folder creation failed: %v", err))
		}
		outcome.CreatedFolder = created

		// Re-ask once now that the requested folder exists. A second
		// create_folder reply is treated as malformed.
		decision, err = s.classify(ctx, file, data, opts)
		if err != nil {
			return skip(outcome, fmt.Sprintf("second classification failed: %v", err))
		}
		if decision.Action == classifier.ActionCreateFolder {
			return skip(outcome, fmt.Sprintf("%v: repeated create_folder reply %q",
				classifier.ErrMalformedReply, decision.Raw))
		}
	}

	if opts.DryRun {
		outcome.Status = StatusWouldMove
		outcome.Folder = decision.Folder
		return outcome
	}

	dst, err := s.lib.MoveInto(decision.Folder, file.Path)
	if err != nil {
		return skip(outcome, fmt.Sprintf("move failed: %v", err))
	}
	outcome.Status = StatusMoved
	outcome.Folder = decision.Folder

	s.recordMove(ctx, runID, outcome, file, dst, decision.Raw)
	return outcome
}

func (s *Sorter) classify(ctx context.Context, file scan.FileMeta, data []byte, opts Options) (classifier.Decision, error) {
	folders, err := s.lib.Folders()
	if err != nil {
		return classifier.Decision{}, err
	}

	if opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
		defer cancel()
	}

	return s.clf.Classify(ctx, classifier.Request{
		ImageName: file.Name,
		ImageData: data,
		MIMEType:  file.MIMEType,
		Folders:   folders,
	})
}

func (s *Sorter) recordMove(ctx context.Context, runID string, outcome Outcome, file scan.FileMeta, dst, reply string) {
	if s.hist == nil {
		return
	}
	err := s.hist.Record(ctx, history.Move{
		RunID:       runID,
		FileName:    file.Name,
		Source:      file.Path,
		Destination: dst,
		Folder:      outcome.Folder,
		Reply:       reply,
	})
	if err != nil {
		// The file has already moved; the ledger is advisory.
		log.Errorf("Failed to record move of %s: %v", file.Name, err)
	}
}

func skip(outcome Outcome, reason string) Outcome {
	outcome.Status = StatusSkipped
	outcome.Reason = reason
	log.Errorf("Skipping %s: %s", outcome.FileName, reason)
	return outcome
}

func ensureIntake(intakeDir string) error {
	// A missing intake folder is created rather than treated as an error.
	if err := os.MkdirAll(intakeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create intake folder %s: %w", intakeDir, err)
	}
	return nil
}
