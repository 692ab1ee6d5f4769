package dsl

import (
	"runtime"
	"strings"

	"github.com/aretw0/grove/pkg/domain"
)

// internalPrefixes are the packages whose frames are skipped when recording a declaration site.
var internalPrefixes = []string{
	"github.com/aretw0/grove/pkg/dsl.",
	"github.com/aretw0/grove.",
}

// caller returns the first stack frame outside the DSL.
func caller() domain.Location {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !isInternal(frame.Function) {
			return domain.Location{File: frame.File, Line: frame.Line}
		}
		if !more {
			return domain.Location{}
		}
	}
}

func isInternal(function string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}
