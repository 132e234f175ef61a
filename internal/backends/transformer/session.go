package transformer

import (
	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

func sessionOptions(onnxLibraryPath string) []options.WithOption {
	if onnxLibraryPath == "" {
		return nil
	}
	return []options.WithOption{options.WithOnnxLibraryPath(onnxLibraryPath)}
}

func newSession(onnxLibraryPath string) (*hugot.Session, error) {
	return hugot.NewORTSession(sessionOptions(onnxLibraryPath)...)
}
