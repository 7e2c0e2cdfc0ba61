package errors

import "sort"

// Sink accumulates diagnostics across a pipeline run. Stages never print
// directly; they append to a Sink, which is threaded through the pipeline
// as an explicit parameter (spec.md §9 "Global mutable state" confines
// this to the sink and to the solver's child process, both passed
// explicitly, never ambient singletons).
type Sink struct {
	reports []*Report
	// stageOrder records the order stages ran in, so reports from the
	// same (file, offset) tie-break by stage per spec.md §5/§7.
	stageOrder map[string]int
	nextStage  int
}

// NewSink creates an empty diagnostic sink.
func NewSink() *Sink {
	return &Sink{stageOrder: map[string]int{}}
}

// RegisterStage assigns the next ordinal to a stage name, used for the
// (file index, byte offset, stage id) sort key. Call once per stage in
// pipeline order before use.
func (s *Sink) RegisterStage(name string) {
	if _, ok := s.stageOrder[name]; !ok {
		s.stageOrder[name] = s.nextStage
		s.nextStage++
	}
}

// Add appends a report to the sink.
func (s *Sink) Add(r *Report) {
	if r == nil {
		return
	}
	s.reports = append(s.reports, r)
}

// HasErrors reports whether any accumulated report is at error severity.
func (s *Sink) HasErrors() bool {
	for _, r := range s.reports {
		if r.Severity == SevError {
			return true
		}
	}
	return false
}

// Reports returns the accumulated reports, stable-sorted by
// (file index ordinal, byte offset, stage id) per spec.md §5/§7. The
// "file index" is derived from first-seen order of file names, so runs
// over the same input set always agree (spec.md §8 P1).
func (s *Sink) Reports() []*Report {
	fileIndex := map[string]int{}
	nextFile := 0
	fileIdx := func(f string) int {
		if idx, ok := fileIndex[f]; ok {
			return idx
		}
		fileIndex[f] = nextFile
		nextFile++
		return fileIndex[f]
	}

	out := make([]*Report, len(s.reports))
	copy(out, s.reports)

	// Pre-compute a stable sort key for each report; the stage id for a
	// report is unknown to the report itself, so it is recovered from
	// Phase via stageOrder (falling back to insertion order if the phase
	// was never registered, which still yields a deterministic — if
	// arbitrary — tie-break since registration order is itself
	// deterministic).
	type keyed struct {
		r          *Report
		file       int
		byteOffset int
		stage      int
		seq        int
	}
	keys := make([]keyed, len(out))
	for i, r := range out {
		file, offset := 0, 0
		if r.Span != nil {
			file = fileIdx(r.Span.File)
			offset = r.Span.ByteStart
		}
		stage, ok := s.stageOrder[r.Phase]
		if !ok {
			stage = s.nextStage + i
		}
		keys[i] = keyed{r: r, file: file, byteOffset: offset, stage: stage, seq: i}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].file != keys[j].file {
			return keys[i].file < keys[j].file
		}
		if keys[i].byteOffset != keys[j].byteOffset {
			return keys[i].byteOffset < keys[j].byteOffset
		}
		if keys[i].stage != keys[j].stage {
			return keys[i].stage < keys[j].stage
		}
		return keys[i].seq < keys[j].seq
	})
	for i := range keys {
		out[i] = keys[i].r
	}
	return out
}

// ExitCode computes the process exit code per spec.md §6.2.
func (s *Sink) ExitCode() int {
	if s.HasErrors() {
		return 1
	}
	return 0
}
