package site

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/charsetlab/internal/dataset"
)

// sampleUsers covers the cases the harness checks: kana and kanji, a
// Windows path whose separators are 0x5C, and 表/ソ whose second Shift_JIS
// byte is also 0x5C but must not be rewritten.
var sampleUsers = [][]string{
	{"id", "name", "kana", "email", "home_dir", "note"},
	{"1", "山田太郎", "ヤマダタロウ", "taro@example.com", `C:\Users\yamada`, "管理者"},
	{"2", "鈴木花子", "スズキハナコ", "hanako@example.com", `C:\Users\suzuki`, "表示テスト"},
	{"3", "佐藤一郎", "サトウイチロウ", "ichiro@example.com", "/home/sato", "ソフト開発部"},
	{"4", "高橋美咲", "タカハシミサキ", "misaki@example.com", `\\fileserver\share`, "価格は\\1,000です"},
}

// SampleCSV returns the sample dataset as UTF-8 CSV text.
func SampleCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(sampleUsers); err != nil {
		return nil, fmt.Errorf("write sample csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteSampleDataset writes the sample dataset, Shift_JIS encoded, to path.
func WriteSampleDataset(path string) error {
	text, err := SampleCSV()
	if err != nil {
		return err
	}
	b, err := dataset.EncodeShiftJIS(text)
	if err != nil {
		return fmt.Errorf("write sample dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write sample dataset: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write sample dataset: %w", err)
	}
	return nil
}
