package utils

import (
	"context"
	"testing"
	"time"
)

func TestSubmitLockScriptsCompile(t *testing.T) {
	// Compile-time smoke test: scripts should be initialized.
	if submitLockAcquireScript == nil || submitLockReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestAcquireSubmitLock_RejectsInvalidArgs(t *testing.T) {
	ctx := context.Background()
	if _, err := AcquireSubmitLock(ctx, nil, "k", "o", time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
