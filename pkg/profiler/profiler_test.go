package profiler

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestStats(t *testing.T) {
	p := NewProfiler()
	for i := 1; i <= 100; i++ {
		p.Record("predict", time.Duration(i)*time.Millisecond)
	}

	s := p.GetStats("predict")
	if s.Count != 100 {
		t.Fatalf("expected 100 samples, got %d", s.Count)
	}
	if s.Min != time.Millisecond || s.Max != 100*time.Millisecond {
		t.Errorf("unexpected range %v..%v", s.Min, s.Max)
	}
	if s.Total != 5050*time.Millisecond {
		t.Errorf("expected total 5.05s, got %v", s.Total)
	}
	if s.Average != 50500*time.Microsecond {
		t.Errorf("expected average 50.5ms, got %v", s.Average)
	}
	if s.Median != 50*time.Millisecond {
		t.Errorf("expected median 50ms, got %v", s.Median)
	}
	if s.P95 != 95*time.Millisecond || s.P99 != 99*time.Millisecond {
		t.Errorf("unexpected percentiles p95=%v p99=%v", s.P95, s.P99)
	}
	if s.StdDev <= 0 {
		t.Error("expected positive standard deviation")
	}
}

func TestEmptyStats(t *testing.T) {
	p := NewProfiler()
	s := p.GetStats("missing")
	if s.Count != 0 || s.Throughput() != 0 {
		t.Errorf("expected empty stats, got %+v", s)
	}

	var buf bytes.Buffer
	p.PrintReport(&buf)
	if !strings.Contains(buf.String(), "No timing data") {
		t.Errorf("unexpected report %q", buf.String())
	}
}

func TestTime(t *testing.T) {
	p := NewProfiler()
	failure := errors.New("boom")

	if err := p.Time("train", func() error { return nil }); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := p.Time("train", func() error { return failure }); err != failure {
		t.Errorf("expected error to pass through, got %v", err)
	}
	if s := p.GetStats("train"); s.Count != 2 {
		t.Errorf("expected 2 timings, got %d", s.Count)
	}

	var buf bytes.Buffer
	p.PrintReport(&buf)
	if !strings.Contains(buf.String(), "train") {
		t.Errorf("report should list train phase: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "StdDev") {
		t.Errorf("report should include a StdDev column: %q", buf.String())
	}

	p.Reset()
	if len(p.GetAllStats()) != 0 {
		t.Error("Reset should clear all phases")
	}
}

func TestConcurrentRecord(t *testing.T) {
	p := NewProfiler()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Start("score").Stop()
			}
		}()
	}
	wg.Wait()

	if s := p.GetStats("score"); s.Count != 1000 {
		t.Errorf("expected 1000 timings, got %d", s.Count)
	}
}
