// Package batch runs many independent pack jobs across a bounded worker
// pool. Jobs are described one-per-line as JSON; workers share nothing but
// the catalog store, which serializes its own writes.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/corpuskit/corpus/internal/bundle"
	"github.com/corpuskit/corpus/internal/catalog"
	"github.com/corpuskit/corpus/internal/errors"
	"github.com/corpuskit/corpus/internal/pack"
)

// Job is one pack job from a batch file.
type Job struct {
	Root     string   `json:"root"`
	Include  []string `json:"include,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
	Encoding string   `json:"encoding,omitempty"`
	Output   string   `json:"output,omitempty"`
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
}

// LoadJobs parses a JSONL job stream. Blank lines and #-prefixed comment
// lines are skipped; malformed lines are reported with their line number.
func LoadJobs(r io.Reader) ([]Job, error) {
	var jobs []Job
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(line), &job); err != nil {
			return nil, errors.Validation("malformed batch job on line "+strconv.Itoa(lineNo), err).
				WithDetail("line", strconv.Itoa(lineNo))
		}
		if job.Root == "" {
			return nil, errors.Validation("batch job on line "+strconv.Itoa(lineNo)+" is missing root", nil).
				WithDetail("line", strconv.Itoa(lineNo))
		}
		jobs = append(jobs, job)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.IO("failed to read batch file", err)
	}
	return jobs, nil
}

// JobResult pairs a job with its outcome. Err is set for jobs that failed or
// were canceled after another job's failure aborted the run.
type JobResult struct {
	Job    Job
	Result *pack.Result
	Err    error
}

// Runner executes batches.
type Runner struct {
	packer  *pack.Packer
	store   *catalog.Store
	workers int
	logger  *slog.Logger
}

// NewRunner creates a runner with the given pool size. A nil store disables
// catalog registration even for jobs that carry an id.
func NewRunner(store *catalog.Store, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		packer:  pack.New(),
		store:   store,
		workers: workers,
		logger:  slog.Default(),
	}
}

// Run executes all jobs, at most workers at a time. The first failure
// cancels jobs that have not started; results line up with the input order.
// The returned error is the first job failure, nil when everything
// succeeded.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, job := range jobs {
		results[i].Job = job
		g.Go(func() error {
			results[i].Result, results[i].Err = r.runJob(ctx, job)
			return results[i].Err
		})
	}

	err := g.Wait()
	r.logger.Info("batch complete",
		slog.Int("jobs", len(jobs)),
		slog.Bool("failed", err != nil))
	return results, err
}

func (r *Runner) runJob(ctx context.Context, job Job) (*pack.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Timeout("batch job canceled", err)
	}

	enc, err := bundle.ParseEncoding(job.Encoding)
	if err != nil {
		return nil, err
	}

	opts := pack.Options{
		Root:          job.Root,
		Include:       job.Include,
		Exclude:       job.Exclude,
		Encoding:      enc,
		Output:        job.Output,
		WriteManifest: true,
	}
	if r.store != nil && job.ID != "" {
		opts.Register = true
		opts.RegisterID = job.ID
		opts.RegisterName = job.Name
		opts.Store = r.store
	}
	return r.packer.Run(ctx, opts)
}
