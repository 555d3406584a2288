package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"filing_analyzer/pkg/core/logger"
)

// LoadFromDirectory loads all prompts below dir into r. Expected structure:
//
//	dir/
//	  category1/
//	    prompt1.json
//	  category2/
//	    prompt2.json
//
// A missing directory is not an error; the built-ins stay in place.
func LoadFromDirectory(r *Registry, dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Named("prompt").Warn("prompts directory not found", zap.String("dir", dir))
		return nil
	}

	loaded := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories and non-JSON files
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		var pt PromptTemplate
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		// Auto-generate ID from path if not specified
		if pt.ID == "" {
			pt.ID = generateIDFromPath(path, dir)
		}
		if pt.Category == "" {
			pt.Category = detectCategory(path, dir)
		}

		if err := r.Register(&pt); err != nil {
			return fmt.Errorf("failed to register %s: %w", pt.ID, err)
		}
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}

	logger.Named("prompt").Info("prompts loaded", zap.Int("count", loaded), zap.String("dir", dir))
	return nil
}

// generateIDFromPath creates a prompt ID from the file path
// e.g., "analysis/summary.json" -> "analysis.summary"
func generateIDFromPath(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	relPath = strings.TrimSuffix(relPath, ".json")
	relPath = strings.ReplaceAll(relPath, string(filepath.Separator), ".")
	return relPath
}

// detectCategory extracts the category from the folder structure
func detectCategory(path string, baseDir string) string {
	relPath, _ := filepath.Rel(baseDir, path)
	parts := strings.Split(relPath, string(filepath.Separator))
	if len(parts) > 1 {
		return parts[0]
	}
	return "default"
}

func parse(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(funcs).Parse(text)
}

func render(name, text string, ctx *PromptExecutionContext) (string, error) {
	if text == "" {
		return "", nil
	}
	tmpl, err := parse(name, text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx.Variables); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderSystemPrompt executes the system prompt template with the given context
func RenderSystemPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	return render(pt.ID+".system", pt.SystemPrompt, ctx)
}

// RenderUserPrompt executes the user prompt template with the given context
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	return render(pt.ID+".user", pt.UserPromptTmpl, ctx)
}
