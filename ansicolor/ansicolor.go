// Package ansicolor provides the small set of named color helpers the
// treeview renderer and spinner need, backed by github.com/fatih/color.
package ansicolor

import (
	"regexp"

	"github.com/fatih/color"
)

var (
	grayFn        = color.New(color.FgHiBlack).SprintFunc()
	orangeFn      = color.RGB(255, 165, 0).SprintFunc()
	brightGreenFn = color.New(color.FgHiGreen).SprintFunc()
	brightRedFn   = color.New(color.FgHiRed).SprintFunc()
	yellowFn      = color.New(color.FgHiYellow).SprintFunc()
	whiteFn       = color.New(color.FgWhite).SprintFunc()
	brightWhiteFn = color.New(color.FgHiWhite).SprintFunc()
	greenFn       = color.New(color.FgGreen).SprintFunc()
	brightCyanFn  = color.New(color.FgHiCyan).SprintFunc()
)

func Gray(s string) string        { return grayFn(s) }
func BrightOrange(s string) string { return orangeFn(s) }
func BrightGreen(s string) string  { return brightGreenFn(s) }
func BrightRed(s string) string    { return brightRedFn(s) }
func BrightYellow(s string) string { return yellowFn(s) }
func White(s string) string        { return whiteFn(s) }
func BrightWhite(s string) string  { return brightWhiteFn(s) }
func Green(s string) string        { return greenFn(s) }
func BrightCyan(s string) string   { return brightCyanFn(s) }

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// VisualLength returns the rune length of s with ANSI escape sequences
// stripped, used by the renderer's viewport trimming.
func VisualLength(s string) int {
	stripped := ansiRe.ReplaceAllString(s, "")
	return len([]rune(stripped))
}
