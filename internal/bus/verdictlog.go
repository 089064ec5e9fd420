package bus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/peoplebench/people-bench/internal/grader"
	"github.com/peoplebench/people-bench/internal/pkg/errors"
)

// VerdictLog subscribes to pair-graded events and appends each pair
// result as one JSON line. The log is the run's durable record: replay
// reproduces the summaries without re-querying any backend.
type VerdictLog struct {
	bus Bus

	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	closed bool
}

// NewVerdictLog opens (or creates) the log file and registers the
// writer on the bus.
func NewVerdictLog(b Bus, path string) (*VerdictLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "opening verdict log", err)
	}

	vl := &VerdictLog{bus: b, file: f, enc: json.NewEncoder(f)}
	if err := b.Subscribe(context.Background(), TopicPairGraded, vl.handle); err != nil {
		f.Close()
		return nil, err
	}
	return vl, nil
}

func (vl *VerdictLog) handle(ctx context.Context, event Event) error {
	pair, err := decodePair(event.Payload)
	if err != nil {
		return err
	}

	vl.mu.Lock()
	defer vl.mu.Unlock()
	if vl.closed {
		return errors.New(errors.CodeInternal, "verdict log is closed")
	}
	return vl.enc.Encode(pair)
}

// drainer is satisfied by buses that can wait for in-flight handlers.
type drainer interface {
	Drain(timeout time.Duration) bool
}

// Close waits for in-flight pair events to land, then closes the file.
// Without the drain, events still being handled when the runner tears
// the log down would be lost from the replay record.
func (vl *VerdictLog) Close() error {
	if d, ok := vl.bus.(drainer); ok {
		d.Drain(10 * time.Second)
	}

	vl.mu.Lock()
	defer vl.mu.Unlock()
	if vl.closed {
		return nil
	}
	vl.closed = true
	return vl.file.Close()
}

// decodePair recovers a typed pair result from an event payload. The
// memory bus delivers the original value; Kafka delivers a decoded
// JSON map, so fall back to a marshal round trip.
func decodePair(payload any) (grader.PairResult, error) {
	if pair, ok := payload.(grader.PairResult); ok {
		return pair, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return grader.PairResult{}, fmt.Errorf("re-encoding pair payload: %w", err)
	}
	var pair grader.PairResult
	if err := json.Unmarshal(data, &pair); err != nil {
		return grader.PairResult{}, fmt.Errorf("decoding pair payload: %w", err)
	}
	return pair, nil
}

// ReadVerdictLog loads all pair results from a verdict log file.
func ReadVerdictLog(path string) ([]grader.PairResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "opening verdict log", err)
	}
	defer f.Close()

	var pairs []grader.PairResult
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var pair grader.PairResult
		if err := json.Unmarshal(raw, &pair); err != nil {
			return nil, errors.Wrap(errors.CodeInternal, fmt.Sprintf("verdict log line %d", line), err)
		}
		pairs = append(pairs, pair)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, "reading verdict log", err)
	}
	return pairs, nil
}
