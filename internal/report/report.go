// Package report renders finished benchmark runs for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/benchkit/pkg/model"
	"github.com/benchkit/pkg/utils"
)

// LabelStats aggregates the measurements sharing one label.
type LabelStats struct {
	Label       string  `json:"label"`
	Count       int     `json:"count"`
	TotalMillis float64 `json:"total_ms"`
	MeanMillis  float64 `json:"mean_ms"`
	MinMillis   float64 `json:"min_ms"`
	MaxMillis   float64 `json:"max_ms"`
	MaxMemoryMB float64 `json:"max_memory_mb"`
}

// Formatter renders a run as a text report and a JSON summary.
type Formatter struct{}

// NewFormatter creates a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format outputs the run to the logger.
func (f *Formatter) Format(run *model.Run, log utils.Logger) {
	if run == nil {
		return
	}

	log.Info("=== Benchmark Report ===")
	log.Info("Run UUID:     %s", run.RunUUID)
	log.Info("Name:         %s", run.Name)
	log.Info("Command:      %s", run.Command)
	log.Info("Status:       %s", run.Status.String())
	log.Info("Iterations:   %d", run.Iterations)
	if run.StatusInfo != "" {
		log.Info("Status Info:  %s", run.StatusInfo)
	}
	log.Info("")

	if len(run.Measurements) == 0 {
		log.Info("(No measurements recorded)")
		return
	}

	log.Info("=== Measurements ===")
	log.Info("  Total time:   %.3f ms across %d spans", float64(run.TotalElapsedNs())/1e6, len(run.Measurements))
	log.Info("  Mean time:    %.3f ms", run.MeanTimeMillis())
	log.Info("  Max memory:   %.3f MB", run.MaxMemoryMB())
	log.Info("")

	log.Info("=== Per Label ===")
	for _, st := range f.Stats(run) {
		log.Info("  %-20s n=%-4d mean=%.3fms min=%.3fms max=%.3fms mem<=%.3fMB",
			st.Label, st.Count, st.MeanMillis, st.MinMillis, st.MaxMillis, st.MaxMemoryMB)
	}
}

// Stats groups the run's measurements by label, sorted by label.
func (f *Formatter) Stats(run *model.Run) []LabelStats {
	byLabel := make(map[string]*LabelStats)
	for _, m := range run.Measurements {
		st, ok := byLabel[m.Label]
		if !ok {
			st = &LabelStats{Label: m.Label, MinMillis: m.TimeMillis, MaxMillis: m.TimeMillis}
			byLabel[m.Label] = st
		}
		st.Count++
		st.TotalMillis += m.TimeMillis
		if m.TimeMillis < st.MinMillis {
			st.MinMillis = m.TimeMillis
		}
		if m.TimeMillis > st.MaxMillis {
			st.MaxMillis = m.TimeMillis
		}
		if m.MemoryMB > st.MaxMemoryMB {
			st.MaxMemoryMB = m.MemoryMB
		}
	}

	stats := make([]LabelStats, 0, len(byLabel))
	for _, st := range byLabel {
		st.MeanMillis = st.TotalMillis / float64(st.Count)
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Label < stats[j].Label })
	return stats
}

// Summary returns a serializable summary of the run.
func (f *Formatter) Summary(run *model.Run) map[string]interface{} {
	if run == nil {
		return nil
	}

	summary := map[string]interface{}{
		"run_uuid":   run.RunUUID,
		"name":       run.Name,
		"command":    run.Command,
		"status":     run.Status.String(),
		"iterations": run.Iterations,
		"total_ms":   float64(run.TotalElapsedNs()) / 1e6,
		"mean_ms":    run.MeanTimeMillis(),
		"max_mem_mb": run.MaxMemoryMB(),
		"labels":     f.Stats(run),
	}
	if run.StatusInfo != "" {
		summary["status_info"] = run.StatusInfo
	}
	summary["measurements"] = run.Measurements
	return summary
}

// WriteJSON writes the JSON summary to <outputDir>/<run-uuid>.json and
// returns the file path.
func (f *Formatter) WriteJSON(run *model.Run, outputDir string) (string, error) {
	if run == nil {
		return "", fmt.Errorf("run is nil")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(f.Summary(run), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	path := filepath.Join(outputDir, run.RunUUID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary: %w", err)
	}
	return path, nil
}
