// Package site produces the files the server hands out: the browser test
// harness under the public directory and a sample Shift_JIS dataset.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/JonMunkholm/charsetlab/internal/api"
	"github.com/JonMunkholm/charsetlab/internal/dataset"
)

//go:embed assets
var assets embed.FS

// Title is the heading of the harness page.
const Title = "文字コード判定テスト"

// copiedDirs are asset directories copied to the public directory verbatim.
var copiedDirs = []string{"js", "css"}

type variantRow struct {
	Query       string
	ContentType string
}

type pageData struct {
	Title    string
	Variants []variantRow
}

// Build empties publicDir and writes the harness into it: index.html
// rendered and encoded as Shift_JIS, plus the js and css assets.
func Build(publicDir string) error {
	if publicDir == "" {
		return errors.New("build: public directory not set")
	}
	if err := emptyDir(publicDir); err != nil {
		return fmt.Errorf("build: %w", err)
	}

	page, err := RenderIndex()
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	sjis, err := dataset.EncodeShiftJIS(page)
	if err != nil {
		return fmt.Errorf("build index.html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(publicDir, "index.html"), sjis, 0o644); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	slog.Info("wrote index.html", "charset", dataset.Charset, "bytes", len(sjis))

	for _, dir := range copiedDirs {
		if err := copyAssets(dir, publicDir); err != nil {
			return fmt.Errorf("build: copy %s: %w", dir, err)
		}
	}
	slog.Info("copied assets", "dirs", copiedDirs, "public_dir", publicDir)
	return nil
}

// RenderIndex renders the harness page as UTF-8.
func RenderIndex() ([]byte, error) {
	tmpl, err := template.ParseFS(assets, "assets/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	data := pageData{Title: Title}
	for _, v := range api.Variants() {
		data.Variants = append(data.Variants, variantRow{Query: v.Query(), ContentType: v.ContentType()})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render index template: %w", err)
	}
	return buf.Bytes(), nil
}

func emptyDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyAssets(dir, dst string) error {
	root := path.Join("assets", dir)
	return fs.WalkDir(assets, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("assets", filepath.FromSlash(p))
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		b, err := assets.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(target, b, 0o644)
	})
}
