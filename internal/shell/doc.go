// Package shell exposes installed tool directories on the execution path.
//
// Inside GitHub Actions, directories are appended to the file named by
// $GITHUB_PATH and the runner prepends them to PATH for later steps.
// Elsewhere they are collected and rendered as an activation script for
// the user's shell:
//
//	eval "$(carvel-setup install --shell bash)"
//
// Shell detection tries $SHELL first and then the parent process name.
package shell
