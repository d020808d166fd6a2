package util

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Marshal encodes data as indented JSON or as YAML.
func Marshal(format string, data interface{}) ([]byte, error) {
	switch strings.ToLower(format) {
	case OutputJSON, "":
		out, err := json.MarshalIndent(data, "", "   ")
		return out, errors.Wrap(err, "problem writing json")
	case OutputYAML, "yml":
		out, err := yaml.Marshal(data)
		return out, errors.Wrap(err, "problem writing yaml")
	default:
		return nil, errors.Errorf("unknown output format '%s'", format)
	}
}

// Print writes the encoded data to w, followed by a newline.
func Print(w io.Writer, format string, data interface{}) error {
	out, err := Marshal(format, data)
	if err != nil {
		return err
	}

	return errors.WithStack(writeBytes(w, out))
}

// WriteFile writes the encoded data to the file fn, replacing it.
func WriteFile(fn, format string, data interface{}) error {
	out, err := Marshal(format, data)
	if err != nil {
		return err
	}

	f, err := os.Create(fn)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	if err = writeBytes(f, out); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(f.Sync())
}

func writeBytes(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return errors.WithStack(err)
	}

	if len(data) > 0 && data[len(data)-1] == '\n' {
		return nil
	}

	_, err := io.WriteString(w, "\n")
	return errors.WithStack(err)
}
