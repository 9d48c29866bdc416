package shell

import (
	"context"

	"solwallet/internal/scanner"
	"solwallet/internal/validator"
)

// quickScan runs the filesystem scanner (C2) rooted at root, offering
// its validated hits as quick picks in AddWalletInput. It reuses the
// validator (C1) directly as the scanner's predicate rather than
// re-parsing candidates later.
func quickScan(ctx context.Context, root string) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	paths, _, err := scanner.Scan(ctx, root, scanner.Options{
		MaxDepth:   defaultScanDepth,
		MaxResults: defaultScanResults,
	}, func(path string) bool {
		result, err := validator.Validate(path)
		if err != nil {
			return false
		}
		result.Close()
		return true
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}
