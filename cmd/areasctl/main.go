// Command areasctl inspects the process store from a terminal.
//
//	areasctl [-config config.yaml] list
//	areasctl [-config config.yaml] [-plain] show <process>
//	areasctl [-config config.yaml] [-plain] published
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

const jsonStyle = "gruvbox"

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func renderList(w io.Writer, docs []model.ProcessDocument) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No processes stored."))
		return err
	}

	t := newTable("#", "Processo", "Áreas", "Pontos", "Revisão", "Modificado")
	for i, doc := range docs {
		pontos := 0
		for _, a := range doc.Areas {
			pontos += len(a.Pontos)
		}
		modified := "-"
		if !doc.ModifiedDate.IsZero() {
			modified = doc.ModifiedDate.Local().Format("2006-01-02 15:04")
		}
		t.Row(strconv.Itoa(i), string(doc.Name), strconv.Itoa(len(doc.Areas)), strconv.Itoa(pontos), shortHash(doc.AreasHash), modified)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// shortHash abbreviates an area list hash. Equal revisions mean equal area lists.
func shortHash(h string) string {
	switch {
	case h == "":
		return "-"
	case len(h) > 12:
		return h[:12]
	}
	return h
}

func renderAreas(w io.Writer, title string, areas []model.Area) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return err
	}

	t := newTable("#", "Faculdade", "Área", "Pontos", "Sorteados")
	for i, a := range areas {
		t.Row(strconv.Itoa(i), a.Faculdade, a.Area, strings.Join(a.Pontos, "\n"), strings.Join(a.PontosSorteados, "\n"))
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// renderJSON prints v as indented JSON, highlighted unless plain is set.
func renderJSON(w io.Writer, v any, plain bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if plain {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if err := quick.Highlight(w, string(data), "json", "terminal256", jsonStyle); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

func show(ctx context.Context, w io.Writer, repo repository.DocumentRepository, name string, plain bool) error {
	doc, err := repo.GetByKey(ctx, model.ProcessName(name))
	if err != nil {
		return err
	}
	if err := renderAreas(w, string(doc.Name), doc.Areas); err != nil {
		return err
	}
	return renderJSON(w, doc, plain)
}

func published(ctx context.Context, w io.Writer, repo repository.DocumentRepository, plain bool) error {
	sel, err := repo.GetSelection(ctx)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		_, err = fmt.Fprintln(w, mutedStyle.Render("Nothing has been published yet."))
		return err
	}
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s (published %s, %s)", sel.ProcessName, sel.PublishedAt.Local().Format("2006-01-02 15:04"), sel.ID)
	if err := renderAreas(w, title, sel.Areas); err != nil {
		return err
	}
	return renderJSON(w, sel, plain)
}

func run(ctx context.Context, w io.Writer, repo repository.DocumentRepository, args []string, plain bool) error {
	if len(args) == 0 {
		return errors.New("missing command: list, show <process> or published")
	}

	switch args[0] {
	case "list":
		docs, err := repo.ListAll(ctx)
		if err != nil {
			return err
		}
		return renderList(w, docs)
	case "show":
		if len(args) < 2 {
			return errors.New("show needs a process name")
		}
		return show(ctx, w, repo, strings.Join(args[1:], " "), plain)
	case "published":
		return published(ctx, w, repo, plain)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func main() {
	godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Config file with the store settings")
	plain := flag.Bool("plain", false, "Print JSON without highlighting")
	flag.Parse()

	config.SetLogger(zerolog.Nop())
	if err := config.LoadConfig(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	repo, err := repository.Open(ctx, config.AppConfig.Store)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer repo.Close()

	if err := run(ctx, os.Stdout, repo, flag.Args(), *plain); err != nil {
		fmt.Fprintln(os.Stderr, err)
		repo.Close()
		os.Exit(1)
	}
}
