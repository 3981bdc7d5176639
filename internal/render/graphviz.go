package render

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindDotBinary locates the Graphviz dot executable.
// Search order: FTA_DOT env var, PATH lookup.
func FindDotBinary() (string, error) {
	if envPath := os.Getenv("FTA_DOT"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}
	if path, err := exec.LookPath("dot"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("graphviz 'dot' not found: set FTA_DOT or install Graphviz and add it to PATH")
}

// RenderPNG renders DOT text to a PNG file by shelling out to Graphviz.
// highQuality raises the DPI and font sizes for print output.
func RenderPNG(dotText, outPath string, highQuality bool) error {
	binary, err := FindDotBinary()
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "fta-render-")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dotPath := filepath.Join(tmpDir, "diagram.dot")
	if err := os.WriteFile(dotPath, []byte(dotText), 0o644); err != nil {
		return fmt.Errorf("writing temp dot file: %w", err)
	}

	args := []string{"-Tpng"}
	if highQuality {
		args = append(args, "-Gdpi=300", "-Gfontsize=14", "-Nfontsize=12", "-Efontsize=9")
	}
	args = append(args, "-o", outPath, dotPath)

	cmd := exec.Command(binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("rendering diagram: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
