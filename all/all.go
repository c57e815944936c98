// Package all imports every registry implementation that publishes engine
// constraints.
//
// Import it for its side effects:
//
//	import (
//		"github.com/git-pkgs/enginecheck"
//		_ "github.com/git-pkgs/enginecheck/all"
//	)
//
//	ecosystems := enginecheck.SupportedEcosystems() // ["cargo" "npm" "pypi"]
package all

import (
	_ "github.com/git-pkgs/enginecheck/internal/cargo"
	_ "github.com/git-pkgs/enginecheck/internal/npm"
	_ "github.com/git-pkgs/enginecheck/internal/pypi"
)
