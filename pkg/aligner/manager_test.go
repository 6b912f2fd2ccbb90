package aligner

import (
	"context"
	"errors"
	"testing"
)

// mockBackend simulates an alignment backend.
type mockBackend struct {
	name      string
	fail      bool
	emitEmpty bool
}

func (m *mockBackend) Align(ctx context.Context, req Request) ([]TimedUnit, error) {
	if m.fail {
		return nil, errors.New("mock backend failure")
	}
	if m.emitEmpty {
		return nil, nil
	}
	return []TimedUnit{{Text: "test", Start: 0, End: 1, Confidence: 0.5}}, nil
}

func (m *mockBackend) Name() string {
	return m.name
}

func TestAlignWithBackend(t *testing.T) {
	req := Request{Lyrics: "test", Granularity: GranularityLine}

	t.Run("Success", func(t *testing.T) {
		manager := NewManager([]Aligner{&mockBackend{name: "TestBackend"}})

		units, backend, err := manager.AlignWithBackend(context.Background(), req)
		if err != nil {
			t.Errorf("Expected success, got error: %v", err)
		}
		if backend != "TestBackend" {
			t.Errorf("Expected backend 'TestBackend', got '%s'", backend)
		}
		if len(units) != 1 {
			t.Errorf("Expected 1 unit, got %d", len(units))
		}
	})

	t.Run("FailoverSuccess", func(t *testing.T) {
		failBackend := &mockBackend{name: "FailBackend", fail: true}
		successBackend := &mockBackend{name: "SuccessBackend"}

		manager := NewManager([]Aligner{failBackend, successBackend})
		_, backend, err := manager.AlignWithBackend(context.Background(), req)
		if err != nil {
			t.Errorf("Expected success with failover, got error: %v", err)
		}
		if backend != "SuccessBackend" {
			t.Errorf("Expected fallback to 'SuccessBackend', got '%s'", backend)
		}
	})

	t.Run("AllFail", func(t *testing.T) {
		manager := NewManager([]Aligner{
			&mockBackend{name: "FailBackend1", fail: true},
			&mockBackend{name: "FailBackend2", emitEmpty: true},
		})

		_, _, err := manager.AlignWithBackend(context.Background(), req)
		if err == nil {
			t.Error("Expected error when all backends fail, got success")
		}
	})

	t.Run("InvalidInputNotRetried", func(t *testing.T) {
		// Empty lyrics fail on the first backend and must not fall through
		// to the next one.
		manager := NewManager([]Aligner{NewUniform(), &mockBackend{name: "ShouldNotRun"}})

		_, _, err := manager.AlignWithBackend(context.Background(), Request{Lyrics: "   \n  "})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestManagerInterfaceCompliance(t *testing.T) {
	manager := NewManager([]Aligner{&mockBackend{name: "TestBackend"}})

	var _ Aligner = manager

	name := manager.Name()
	expected := "Manager[Primary: TestBackend]"
	if name != expected {
		t.Errorf("Expected manager name '%s', got '%s'", expected, name)
	}

	if manager.GetBackendCount() != 1 {
		t.Errorf("Expected 1 backend, got %d", manager.GetBackendCount())
	}
}
