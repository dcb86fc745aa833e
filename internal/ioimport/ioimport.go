// Package ioimport loads children with their measurements and intake
// logs from a YAML file. Children are processed concurrently, records
// of one child are appended in timestamp order by a single worker.
package ioimport

import (
	"bytes"
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gizisehat/gizi/internal/iofs"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/errcode"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/importdoc"
	"github.com/gnames/gnfmt"
	"golang.org/x/sync/errgroup"
)

type importer struct {
	svc      gizi.Gizi
	jobs     int
	progress bool
}

// Option configures the importer.
type Option func(*importer)

// OptJobs limits the number of children processed at once.
func OptJobs(n int) Option {
	return func(im *importer) {
		if n > 0 {
			im.jobs = n
		}
	}
}

// OptProgress shows a progress bar on stderr.
func OptProgress(b bool) Option {
	return func(im *importer) {
		im.progress = b
	}
}

// New creates an importer that writes through the service.
func New(svc gizi.Gizi, opts ...Option) importdoc.Importer {
	res := &importer{svc: svc, jobs: 1}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

type counters struct {
	added, measurements, intake, skipped, rejected atomic.Int64
}

// Import reads the file and appends its records. Records failing
// validation are counted and skipped, storage failures stop the import.
func (im *importer) Import(ctx context.Context, path string) (importdoc.Summary, error) {
	start := time.Now()
	b, err := iofs.ReadFile(path)
	if err != nil {
		return importdoc.Summary{}, err
	}
	doc, err := importdoc.Parse(path, bytes.NewReader(b))
	if err != nil {
		return importdoc.Summary{}, err
	}
	if err = doc.Validate(); err != nil {
		return importdoc.Summary{}, importdoc.ParseError(path, err)
	}
	for _, w := range doc.Warnings {
		slog.Warn("Import record is invalid", "warning", w.String())
	}

	total := doc.Records()
	slog.Info("Importing records",
		"file", path,
		"children", len(doc.Children),
		"records", humanize.Comma(int64(total)),
	)

	var bar *pb.ProgressBar
	if im.progress {
		bar = pb.Full.Start(total)
		bar.Set("prefix", "Importing records: ")
		bar.Set(pb.CleanOnFinish, true)
	}

	var cnt counters
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(im.jobs)
	for _, cd := range doc.Children {
		g.Go(func() error {
			return im.importChild(gCtx, cd, &cnt, bar)
		})
	}
	err = g.Wait()
	if bar != nil {
		bar.Finish()
	}

	res := importdoc.Summary{
		Children:      len(doc.Children),
		ChildrenAdded: int(cnt.added.Load()),
		Measurements:  int(cnt.measurements.Load()),
		Intake:        int(cnt.intake.Load()),
		Skipped:       int(cnt.skipped.Load()),
		Rejected:      int(cnt.rejected.Load()),
		Duration:      time.Since(start),
	}
	if err != nil {
		return res, err
	}

	slog.Info("Import complete",
		"children", res.Children,
		"added", res.ChildrenAdded,
		"measurements", humanize.Comma(int64(res.Measurements)),
		"intake", humanize.Comma(int64(res.Intake)),
		"skipped", res.Skipped,
		"rejected", res.Rejected,
		"duration", gnfmt.TimeString(res.Duration.Seconds()),
	)
	return res, nil
}

func (im *importer) importChild(
	ctx context.Context,
	cd importdoc.ChildDoc,
	cnt *counters,
	bar *pb.ProgressBar,
) error {
	advance := func(n int) {
		if bar != nil {
			bar.Add(n)
		}
	}

	c, err := cd.Child()
	if err != nil {
		cnt.rejected.Add(int64(len(cd.Measurements) + len(cd.Intake)))
		advance(len(cd.Measurements) + len(cd.Intake))
		return nil
	}
	c, err = im.ensureChild(ctx, c, cnt)
	if err != nil {
		return err
	}

	ms, errs := cd.ToMeasurements(c.ID)
	cnt.rejected.Add(int64(len(errs)))
	advance(len(errs))

	latest, err := im.latest(ctx, c.ID)
	if err != nil {
		return err
	}
	for _, m := range ms {
		advance(1)
		if !m.Timestamp.After(latest) {
			cnt.skipped.Add(1)
			continue
		}
		_, serr := im.svc.SubmitMeasurement(ctx, c.ID, m)
		accepted, err := im.record(c.ID, "measurement", serr, cnt)
		if err != nil {
			return err
		}
		if accepted {
			cnt.measurements.Add(1)
		}
	}

	// days that already have intake in storage were imported before
	logged := make(map[string]bool)
	for _, e := range cd.ToIntake(c.ID) {
		advance(1)
		done, ok := logged[e.Date]
		if !ok {
			p, perr := im.svc.DailyProgress(ctx, c.ID, e.Date)
			done = perr == nil && p.Entries > 0
			logged[e.Date] = done
		}
		if done {
			cnt.skipped.Add(1)
			continue
		}
		_, lerr := im.svc.LogIntake(ctx, c.ID, e)
		accepted, err := im.record(c.ID, "intake", lerr, cnt)
		if err != nil {
			return err
		}
		if accepted {
			cnt.intake.Add(1)
		}
	}
	return nil
}

// ensureChild registers the child unless it is stored already.
func (im *importer) ensureChild(
	ctx context.Context,
	c child.Child,
	cnt *counters,
) (child.Child, error) {
	res, err := im.svc.Child(ctx, c.ID)
	if err == nil {
		return res, nil
	}
	if !errcode.Is(err, errcode.NotFoundError) {
		return child.Child{}, RecordError(c.ID, err)
	}
	res, err = im.svc.AddChild(ctx, c)
	if err != nil {
		return child.Child{}, RecordError(c.ID, err)
	}
	cnt.added.Add(1)
	return res, nil
}

func (im *importer) latest(ctx context.Context, childID string) (time.Time, error) {
	seq, err := im.svc.History(ctx, childID)
	if err != nil {
		return time.Time{}, RecordError(childID, err)
	}
	var res time.Time
	for e := range seq {
		res = e.Timestamp
	}
	return res, nil
}

// record reports whether the append succeeded. Rejected records are
// counted, other failures stop the import.
func (im *importer) record(childID, kind string, err error, cnt *counters) (bool, error) {
	if err == nil {
		return true, nil
	}
	switch errcode.CodeOf(err) {
	case errcode.ValidationError, errcode.ReferenceDataGap:
		cnt.rejected.Add(1)
		slog.Warn("Import record rejected", "child", childID, "kind", kind, "error", err)
		return false, nil
	}
	return false, RecordError(childID, err)
}
