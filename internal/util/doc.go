// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across onboard.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing on an afero.Fs
//
// String Utilities:
//   - TruncateWidth, PadWidth: terminal-column aware truncation and padding
//   - DisplayStatus: task status normalization
//
// Dates:
//   - FormatDate, FormatLongDate, FormatDateTime: backend date display,
//     "N/A" for missing values
//   - IsOverdue, IsCompleted: task due-date checks
package util
