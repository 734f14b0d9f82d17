// Package importer loads article files with YAML front matter into the club.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go-club-app/internal/content"
	"go-club-app/internal/data"
	"go-club-app/internal/logger"
	"go-club-app/internal/service"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// FrontMatter is the header block of an article file.
type FrontMatter struct {
	Title          string `yaml:"title"`
	Slug           string `yaml:"slug"`
	Excerpt        string `yaml:"excerpt"`
	Format         string `yaml:"format"`
	Public         bool   `yaml:"public"`
	SubscriberOnly bool   `yaml:"subscriber_only"`
}

// Saver stores one article.
type Saver interface {
	SaveArticle(ctx context.Context, in service.ArticleInput) (*data.Article, error)
}

// Result summarises an import run.
type Result struct {
	Imported []string
	Skipped  map[string]error
}

// Importer walks a directory of article files and saves each one.
type Importer struct {
	saver  Saver
	author string
	log    logger.Logger
}

// New creates an Importer that records author as the author of new articles.
func New(saver Saver, author string, log logger.Logger) *Importer {
	return &Importer{saver: saver, author: author, log: log}
}

// Import saves every .md, .json and .html file under root. A file that
// cannot be parsed or saved is skipped and reported in the result.
func (im *Importer) Import(ctx context.Context, fsys fs.FS, root string) (*Result, error) {
	res := &Result{Skipped: map[string]error{}}
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		// .txt files carry no format hint and are detected from their body.
		if ext := path.Ext(p); formatForExt(ext) == "" && ext != ".txt" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		in, err := im.parse(p, raw)
		if err == nil {
			var a *data.Article
			a, err = im.saver.SaveArticle(ctx, in)
			if err == nil {
				im.log.Info("Imported " + p + " as " + a.Slug)
				res.Imported = append(res.Imported, a.Slug)
				return nil
			}
		}
		im.log.Warn(fmt.Sprintf("Skipped %s: %v", p, err))
		res.Skipped[p] = err
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return res, nil
}

func (im *Importer) parse(name string, raw []byte) (service.ArticleInput, error) {
	fm, body, err := SplitFrontMatter(raw)
	if err != nil {
		return service.ArticleInput{}, err
	}
	format := fm.Format
	if format == "" {
		format = string(formatForExt(path.Ext(name)))
	}
	if format == "" {
		format = string(content.DetectFormat(body))
	}
	title := fm.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	return service.ArticleInput{
		Title:            title,
		Slug:             fm.Slug,
		Excerpt:          fm.Excerpt,
		Body:             body,
		Format:           format,
		IsPublic:         fm.Public,
		IsSubscriberOnly: fm.SubscriberOnly,
		AuthorID:         im.author,
	}, nil
}

// SplitFrontMatter separates a leading "---" YAML block from the body.
// A file without one has an empty FrontMatter.
func SplitFrontMatter(raw []byte) (FrontMatter, string, error) {
	var fm FrontMatter
	trimmed := bytes.TrimLeft(raw, "\ufeff\r\n\t ")
	if !bytes.HasPrefix(trimmed, delimiter) {
		return fm, string(raw), nil
	}
	rest := trimmed[len(delimiter):]
	end := bytes.Index(rest, append([]byte("\n"), delimiter...))
	if end < 0 {
		return fm, "", errors.New("front matter is not closed")
	}
	if err := yaml.Unmarshal(rest[:end], &fm); err != nil {
		return fm, "", fmt.Errorf("invalid front matter: %w", err)
	}
	body := rest[end+1+len(delimiter):]
	return fm, strings.TrimSpace(string(body)), nil
}

func formatForExt(ext string) content.Format {
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return content.FormatMarkdown
	case ".json":
		return content.FormatTree
	case ".html", ".htm":
		return content.FormatHTML
	}
	return ""
}
