package testutils

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// LogError is a test helper function to log an error message if it is not nil.
//
// This is to help make sure our error messages are helpful and informative.
func LogError(t *testing.T, err error) {
	if err == nil {
		return
	}

	t.Helper()
	t.Logf("error message:\n%v", err)
}

// ObservedLogger returns a debug level logger and the logs it records.
func ObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// FindMessages returns the recorded entries with the given message and "type" field.
func FindMessages(logs *observer.ObservedLogs, msg, typ string) []observer.LoggedEntry {
	var entries []observer.LoggedEntry
	for _, entry := range logs.FilterMessage(msg).All() {
		if entry.ContextMap()["type"] == typ {
			entries = append(entries, entry)
		}
	}
	return entries
}

// CountMessages returns the number of recorded entries with the given message and "type" field.
func CountMessages(logs *observer.ObservedLogs, msg, typ string) int {
	return len(FindMessages(logs, msg, typ))
}

// RunParallel runs a function in parallel with the given concurrency.
func RunParallel(concurrency int, f func(int)) {
	wg := sync.WaitGroup{}
	wg.Add(concurrency)

	for i := range concurrency {
		go func() {
			defer wg.Done()
			f(i)
		}()
	}

	wg.Wait()
}

// CollectChannel collects all values from a channel and returns them in a slice.
func CollectChannel[V any](ch <-chan V) []V {
	//nolint:prealloc // No way of knowing the number of values in the channel
	var values []V
	for v := range ch {
		values = append(values, v)
	}

	return values
}
