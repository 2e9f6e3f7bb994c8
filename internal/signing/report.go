// Package signing verifies APK/AAB signatures with the Android and JDK
// command-line tools and turns their text output into a report.
package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultJarsigner is the jarsigner binary looked up on PATH when no path is given.
const DefaultJarsigner = "jarsigner"

// Report is the JSON document written by the report command.
type Report struct {
	APK APKInfo `json:"apk"`
	AAB AABInfo `json:"aab"`
}

// GateError is a hard verification failure. Output holds the raw tool text.
type GateError struct {
	Reason string
	Output string
}

func (e *GateError) Error() string {
	return e.Reason
}

// Options names the inputs and tool binaries for one run.
type Options struct {
	APKPath   string
	AABPath   string
	APKSigner string
	Jarsigner string
}

// Generator runs the verification tools and assembles a Report.
type Generator struct {
	runner Runner
	opts   Options
}

// NewGenerator constructs a Generator. A nil runner means ExecRunner.
func NewGenerator(runner Runner, opts Options) *Generator {
	if runner == nil {
		runner = ExecRunner{}
	}
	opts.APKPath = strings.TrimSpace(opts.APKPath)
	opts.AABPath = strings.TrimSpace(opts.AABPath)
	opts.APKSigner = strings.TrimSpace(opts.APKSigner)
	opts.Jarsigner = strings.TrimSpace(opts.Jarsigner)
	if opts.Jarsigner == "" {
		opts.Jarsigner = DefaultJarsigner
	}
	return &Generator{runner: runner, opts: opts}
}

// Generate verifies the APK (and the AAB when configured). It returns a
// *GateError when v1 or v2 is not verified or when jarsigner exits non-zero.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	if g.opts.APKPath == "" {
		return nil, errors.New("apk path required")
	}
	if g.opts.APKSigner == "" {
		return nil, errors.New("apksigner path required")
	}

	res, err := g.runner.Run(ctx, g.opts.APKSigner, "verify", "--verbose", "--print-certs", g.opts.APKPath)
	if err != nil {
		return nil, fmt.Errorf("apksigner: %w", err)
	}
	apk := ParseAPKSigner(res.Output)
	logrus.WithFields(logrus.Fields{
		"apk":       g.opts.APKPath,
		"exit_code": res.ExitCode,
		"v1":        apk.V1,
		"v2":        apk.V2,
		"v3":        apk.V3,
		"signers":   len(apk.Signers),
	}).Info("apksigner verification parsed")

	if !apk.V1 || !apk.V2 {
		return nil, &GateError{
			Reason: "Signature verification failed: V1/V2 required",
			Output: res.Output,
		}
	}

	report := &Report{APK: apk}
	if g.opts.AABPath == "" {
		return report, nil
	}

	res, err = g.runner.Run(ctx, g.opts.Jarsigner, "-verify", "-verbose", "-certs", g.opts.AABPath)
	if err != nil {
		return nil, fmt.Errorf("jarsigner: %w", err)
	}
	report.AAB = ParseJarsigner(res.Output)
	logrus.WithFields(logrus.Fields{
		"aab":       g.opts.AABPath,
		"exit_code": res.ExitCode,
		"signer":    report.AAB.Signer,
	}).Info("jarsigner verification parsed")

	if res.ExitCode != 0 {
		return nil, &GateError{
			Reason: "AAB jarsigner verification failed",
			Output: res.Output,
		}
	}
	return report, nil
}

// MarshalIndented encodes the report as two-space indented JSON without
// escaping HTML or non-ASCII characters.
func (r *Report) MarshalIndented() ([]byte, error) {
	return marshalIndented(r)
}

func marshalIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteFiles renders both outputs before touching the filesystem so a render
// failure leaves nothing behind.
func WriteFiles(report *Report, jsonPath, htmlPath string) error {
	if report == nil {
		return errors.New("report is nil")
	}
	jsonData, err := report.MarshalIndented()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	htmlData, err := RenderHTML(report)
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}

	if err := writeFile(jsonPath, jsonData); err != nil {
		return err
	}
	if err := writeFile(htmlPath, htmlData); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"json": jsonPath,
		"html": htmlPath,
	}).Info("signature report written")
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
