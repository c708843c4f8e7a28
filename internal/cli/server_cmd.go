// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/morganforge/onboard-tui/internal/mockapi"
)

// DefaultMockAddr is where the mock backend listens by default.
const DefaultMockAddr = ":3000"

// HandleMockServer runs the bundled mock backend until ctx is done.
func HandleMockServer(ctx context.Context, w io.Writer, log *logrus.Logger, args Args) error {
	addr := args.Parser().FlagOrDefault("addr", DefaultMockAddr)
	fmt.Fprintf(w, "Mock backend listening on %s (password for every user: %s)\n", addr, mockapi.DefaultPassword)
	return mockapi.New(log).ListenAndServe(ctx, addr)
}
