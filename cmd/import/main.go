// Command import seeds the configured store with processes read from a TOML file:
//
//	[[processo]]
//	nome = "Mestrado 2026"
//
//	  [[processo.areas]]
//	  faculdade = "Escola Politécnica"
//	  area = "Redes"
//	  pontos = ["Roteamento", "Camada de transporte"]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/logger"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
)

type seedProcess struct {
	Name  string       `toml:"nome"`
	Areas []model.Area `toml:"areas"`
}

type seedFile struct {
	Processes []seedProcess `toml:"processo"`
}

// parseSeed decodes a seed file into process documents, in file order.
func parseSeed(data string) ([]*model.ProcessDocument, error) {
	var seed seedFile
	md, err := toml.Decode(data, &seed)
	if err != nil {
		return nil, fmt.Errorf("error parsing seed: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in seed: %v", undecoded)
	}

	seen := make(map[string]bool, len(seed.Processes))
	docs := make([]*model.ProcessDocument, 0, len(seed.Processes))
	for i, p := range seed.Processes {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("processo #%d has no nome", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("processo %q is declared twice", name)
		}
		seen[name] = true

		doc := model.NewProcessDocument(model.ProcessName(name))
		doc.Areas = model.CloneAreas(p.Areas)
		docs = append(docs, doc)
	}
	return docs, nil
}

type importResult struct {
	Created, Replaced, Skipped int
}

// importDocuments writes docs to repo. Existing processes are left alone
// unless replace is set, in which case their area list is overwritten.
func importDocuments(ctx context.Context, repo repository.DocumentRepository, docs []*model.ProcessDocument, replace bool, l zerolog.Logger) (importResult, error) {
	var res importResult

	for _, doc := range docs {
		existing, err := repo.GetByKey(ctx, doc.Name)
		switch {
		case errors.Is(err, repository.ErrDocumentNotFound):
			if err := repo.Put(ctx, doc); err != nil {
				return res, fmt.Errorf("error creating %q: %w", doc.Name, err)
			}
			res.Created++
			l.Info().Str("process", string(doc.Name)).Int("areas", len(doc.Areas)).Msg("Process created")
		case err != nil:
			return res, fmt.Errorf("error looking up %q: %w", doc.Name, err)
		case replace:
			if err := repo.UpdateAreas(ctx, existing.ID, doc.Areas); err != nil {
				return res, fmt.Errorf("error replacing %q: %w", doc.Name, err)
			}
			res.Replaced++
			l.Info().Str("process", string(doc.Name)).Int("areas", len(doc.Areas)).Msg("Process replaced")
		default:
			res.Skipped++
			l.Warn().Str("process", string(doc.Name)).Msg("Process already exists, skipped")
		}
	}
	return res, nil
}

func main() {
	godotenv.Load()

	seedPath := flag.String("file", "", "TOML seed file")
	configPath := flag.String("config", "config.yaml", "Config file with the store settings")
	replace := flag.Bool("replace", false, "Overwrite the areas of processes that already exist")
	flag.Parse()

	l := logger.New("info")
	config.SetLogger(l)
	repository.SetLogger(l)

	if *seedPath == "" {
		l.Fatal().Msg("The --file flag is required")
	}

	if err := config.LoadConfig(*configPath); err != nil {
		l.Fatal().Err(err).Msg("Failed to load config")
	}

	data, err := os.ReadFile(*seedPath)
	if err != nil {
		l.Fatal().Err(err).Str("path", *seedPath).Msg("Failed to read seed file")
	}

	docs, err := parseSeed(string(data))
	if err != nil {
		l.Fatal().Err(err).Str("path", *seedPath).Msg("Invalid seed file")
	}

	ctx := context.Background()
	repo, err := repository.Open(ctx, config.AppConfig.Store)
	if err != nil {
		l.Fatal().Err(err).Msg("Failed to open store")
	}
	defer repo.Close()

	res, err := importDocuments(ctx, repo, docs, *replace, l)
	if err != nil {
		l.Error().Err(err).Msg("Import stopped")
	}
	l.Info().Int("created", res.Created).Int("replaced", res.Replaced).Int("skipped", res.Skipped).Msg("Import finished")
	if err != nil {
		os.Exit(1)
	}
}
