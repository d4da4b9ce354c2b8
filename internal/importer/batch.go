// internal/importer/batch.go
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BatchConfig controls the directory import worker pool.
type BatchConfig struct {
	WorkerCount   int
	RetryAttempts int
}

// BatchResult reports the outcome of a directory import pass.
type BatchResult struct {
	Summaries []Summary
	Failed    []string
}

type batchJob struct {
	path    string
	kind    string
	retries int
}

// ImportDir scans dir for CSV exports and imports them concurrently.
// The dataset kind is inferred from the file name: files containing
// "product" load the catalog, "inventory" or "count" load count logs,
// everything else is treated as sales. Products are imported before
// the worker pool starts so sales rows can resolve against the catalog.
func (imp *Importer) ImportDir(ctx context.Context, dir string, cfg BatchConfig) (*BatchResult, error) {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 4
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read import dir %s: %w", dir, err)
	}

	var catalogs []batchJob
	var jobs []batchJob
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		job := batchJob{
			path: filepath.Join(dir, entry.Name()),
			kind: classifyFile(entry.Name()),
		}
		if job.kind == "products" {
			catalogs = append(catalogs, job)
		} else {
			jobs = append(jobs, job)
		}
	}
	if len(catalogs)+len(jobs) == 0 {
		return &BatchResult{}, nil
	}

	result := &BatchResult{}
	for _, job := range catalogs {
		summary, err := imp.ImportProducts(ctx, job.path)
		if err != nil {
			log.Error().Err(err).Str("file", job.path).Msg("catalog import failed")
			result.Failed = append(result.Failed, job.path)
			continue
		}
		result.Summaries = append(result.Summaries, *summary)
	}

	jobChan := make(chan batchJob, len(jobs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				summary, err := imp.importOne(ctx, job)
				for err != nil && job.retries < cfg.RetryAttempts {
					job.retries++
					log.Warn().Err(err).Str("file", job.path).
						Int("attempt", job.retries).Msg("import failed, retrying")
					summary, err = imp.importOne(ctx, job)
				}
				if err != nil {
					log.Error().Err(err).Str("file", job.path).Msg("import failed")
					mu.Lock()
					result.Failed = append(result.Failed, job.path)
					mu.Unlock()
					continue
				}
				mu.Lock()
				result.Summaries = append(result.Summaries, *summary)
				mu.Unlock()
			}
		}()
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- job:
		}
	}
	close(jobChan)
	wg.Wait()

	sort.Slice(result.Summaries, func(i, j int) bool {
		return result.Summaries[i].File < result.Summaries[j].File
	})
	return result, nil
}

func (imp *Importer) importOne(ctx context.Context, job batchJob) (*Summary, error) {
	start := time.Now()
	var summary *Summary
	var err error
	switch job.kind {
	case "inventory":
		summary, err = imp.ImportInventory(ctx, job.path)
	default:
		summary, err = imp.ImportSales(ctx, job.path)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", job.path).Str("kind", job.kind).
		Int("rows", summary.Imported).Dur("elapsed", time.Since(start)).
		Msg("file imported")
	return summary, nil
}

// classifyFile infers the dataset from the export's file name. The
// spreadsheet era named its sales export "Inventory Management -
// Sales.csv", so "sales" must win over "inventory".
func classifyFile(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "product"):
		return "products"
	case strings.Contains(lower, "sales"):
		return "sales"
	case strings.Contains(lower, "inventory"), strings.Contains(lower, "count"):
		return "inventory"
	default:
		return "sales"
	}
}
