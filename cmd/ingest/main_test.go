package main

import (
	"context"
	"fmt"
	"os"
	"testing"

	appErrors "github.com/shijuleon/allot/pkg/errors"

	"github.com/stretchr/testify/assert"
)

func TestAbortReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "io", err: appErrors.NewIOError("a.json", os.ErrNotExist), want: "unreadable cluster file"},
		{name: "parse", err: appErrors.NewParseError("bad", nil), want: "invalid cluster record"},
		{name: "conflict", err: appErrors.NewConflictError("changed"), want: "concurrent modification"},
		{name: "store", err: appErrors.NewStoreError("PutItem", fmt.Errorf("refused")), want: "store request failed"},
		{name: "wrapped parse", err: appErrors.Wrap(appErrors.NewParseError("bad", nil), "cluster file a.json"), want: "invalid cluster record"},
		{name: "other", err: context.Canceled, want: "unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, abortReason(tt.err))
		})
	}
}
