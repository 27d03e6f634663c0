package file

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptTemplate is a built-in prompt and the number of %s verbs it takes.
type promptTemplate struct {
	help   string
	text   string
	params int
}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var builtinPrompts = map[string]promptTemplate{
	driven.PromptAnswerSystem: {
		help: "System prompt for grounded answers. %s receives the numbered sources.",
		text: `You are a legal research assistant. Answer the user's question using only the
sources below. Cite each source you rely on by its title and citation. If the
sources do not answer the question, say so plainly instead of guessing.

Sources:
%s`,
		params: 1,
	},
	driven.PromptAnswerUngrounded: {
		help: "System prompt used when no stored document matches the question.",
		text: `You are a legal research assistant. No documents in the user's library matched
the question. Say that no supporting sources were found, then give a brief,
general answer and recommend that the user consult primary sources.`,
	},
}

// errBadPlaceholders reports a custom prompt whose %s count does not match
// its built-in template.
var errBadPlaceholders = errors.New("wrong number of %s placeholders")

// PromptStore serves answer prompts that users can override by editing
// <dir>/<name>.txt. Lines starting with '#' are comments. A custom prompt
// with the wrong placeholders is ignored in favour of the built-in one.
//
// Nothing touches the disk until the first Load.
type PromptStore struct {
	dir string

	mu      sync.Mutex
	seeded  bool
	prompts map[string]string
}

// NewPromptStore creates a prompt store rooted at dir.
// If dir is empty, defaults to ~/.lexis/prompts/.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".lexis", "prompts")
	}
	return &PromptStore{dir: dir, prompts: make(map[string]string)}, nil
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the named prompt, reading the user's file once and caching it.
func (s *PromptStore) Load(name string) (string, error) {
	builtin, known := builtinPrompts[name]

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seeded {
		s.seeded = true
		if err := s.seed(); err != nil {
			logger.Warn("prompts: %v; using built-in prompts", err)
		}
	}
	if prompt, ok := s.prompts[name]; ok {
		return prompt, nil
	}

	prompt, err := readPrompt(filepath.Join(s.dir, name+".txt"))
	switch {
	case err == nil && known && strings.Count(prompt, "%s") != builtin.params:
		logger.Warn("prompts: %s.txt: %v, expected %d; using built-in prompt", name, errBadPlaceholders, builtin.params)
		prompt = builtin.text
	case err == nil && prompt == "" && known:
		prompt = builtin.text
	case err != nil && known:
		prompt = builtin.text
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.prompts[name] = prompt
	return prompt, nil
}

// Reload drops cached prompts so edited files are read again.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.prompts = make(map[string]string)
	s.mu.Unlock()
}

// seed writes each built-in prompt that has no file yet, with a comment
// header describing it.
func (s *PromptStore) seed() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	for name, p := range builtinPrompts {
		path := filepath.Join(s.dir, name+".txt")
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		content := "# " + p.help + "\n# Delete this file to restore the default.\n\n" + p.text + "\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// readPrompt reads a prompt file, dropping '#' comment lines and
// surrounding whitespace.
func readPrompt(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
