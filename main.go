// =============================================================================
// Belgian Batch Converter - Main Entry Point
// =============================================================================
//
// batchconv writes and reads the fixed-width batch files Belgian banks use
// for domiciliations (DOM80) and payment orders (BVB).
//
// USAGE:
//   batchconv write      - Convert every export in the input directory
//   batchconv read FILE  - Print a batch file, optionally export XML/XLSX
//   batchconv validate   - Check a batch file's trailer totals
//   batchconv version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : record codecs, batch formats and the conversion pipeline
//   - pkg/           : shared file handling utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/belgian-batch-converter/cmd"
)

func main() {
	cmd.Execute()
}
