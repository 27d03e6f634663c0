package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// retrievalFlags are shared by the retrieve and ask commands.
type retrievalFlags struct {
	user        string
	types       []string
	topK        int
	minScore    float64
	minScoreSet bool
	granularity string
	publicOnly  bool
}

var (
	retrieveFlags retrievalFlags
	retrieveJSON  bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Find the passages most similar to a query",
	Long: `Embeds the query and ranks stored chunks by cosine similarity.
Only public documents and documents owned by --user are searched.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetrieve,
}

func init() {
	addRetrievalFlags(retrieveCmd, &retrieveFlags)
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func addRetrievalFlags(cmd *cobra.Command, f *retrievalFlags) {
	cmd.Flags().StringVarP(&f.user, "user", "u", "", "include this user's private documents")
	cmd.Flags().StringSliceVarP(&f.types, "type", "t", nil, "limit to document types")
	cmd.Flags().IntVarP(&f.topK, "top-k", "k", 0, "maximum number of results (default from config)")
	cmd.Flags().Float64Var(&f.minScore, "min-score", 0, "similarity threshold (default from config, negative disables)")
	cmd.Flags().StringVar(&f.granularity, "granularity", "", "chunk or document")
	cmd.Flags().BoolVar(&f.publicOnly, "public-only", false, "search public documents only")
}

func (f retrievalFlags) options() (domain.RetrievalOptions, error) {
	types := make([]domain.DocumentType, 0, len(f.types))
	for _, t := range f.types {
		dt := domain.DocumentType(t)
		if !dt.IsValid() {
			return domain.RetrievalOptions{}, fmt.Errorf("%w: document type %q", domain.ErrInvalidInput, t)
		}
		types = append(types, dt)
	}
	granularity := domain.Granularity(f.granularity)
	if f.granularity != "" && !granularity.IsValid() {
		return domain.RetrievalOptions{}, fmt.Errorf("%w: granularity %q", domain.ErrInvalidInput, f.granularity)
	}

	return domain.RetrievalOptions{
		Filter: domain.CorpusFilter{
			OwnerID:    f.user,
			PublicOnly: f.publicOnly,
			Types:      types,
		},
		TopK:        f.topK,
		MinScore:    f.minScore,
		MinScoreSet: f.minScoreSet,
		Granularity: granularity,
	}, nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	retrieveFlags.minScoreSet = cmd.Flags().Changed("min-score")
	opts, err := retrieveFlags.options()
	if err != nil {
		return err
	}

	results, err := retrievalService.Retrieve(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		return outputRetrieveJSON(cmd, results)
	}
	outputRetrieveTable(cmd, results)
	return nil
}

func outputRetrieveJSON(cmd *cobra.Command, results []domain.RetrievalCandidate) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, results []domain.RetrievalCandidate) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	st := newStyles(cmd.OutOrStdout())
	for i, r := range results {
		title := r.Title
		if r.Citation != "" {
			title += " " + r.Citation
		}
		cmd.Printf("%s %s %s\n",
			st.index.Render(fmt.Sprintf("[%d]", i+1)),
			st.title.Render(title),
			st.score.Render(fmt.Sprintf("%.2f", r.Score)))
		cmd.Println(st.meta.Render(fmt.Sprintf("    %s, document %s", r.Type, r.DocumentID)))
		cmd.Println(st.excerpt.Render(indent(r.Excerpt, "    ")))
		cmd.Println()
	}
}

// styles holds the lipgloss styles for result output. Styling is disabled
// when output is not a terminal.
type styles struct {
	index   lipgloss.Style
	title   lipgloss.Style
	score   lipgloss.Style
	meta    lipgloss.Style
	excerpt lipgloss.Style
}

func newStyles(w io.Writer) styles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return styles{index: plain, title: plain, score: plain, meta: plain, excerpt: plain}
	}
	return styles{
		index:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		score:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		excerpt: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
