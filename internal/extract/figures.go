// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/evidence-engine/internal/artifact"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

// pdfimages writes one file per embedded image, named
// <prefix>-<page>-<index>.<ext> when invoked with -p.
var pdfImageName = regexp.MustCompile(`-(\d+)-(\d+)\.(\w+)$`)

// ExtractPDFFigures indexes the images emitted by pdfimages for pdfPath
// (expected in a <stem>-images sibling directory), copying each into
// outDir and recording its page number (R2.2).
func ExtractPDFFigures(doc *types.Document, pdfPath, outDir string) ([]types.FigureIndexRow, error) {
	imageDir := imageSidecarDir(pdfPath)
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		if os.IsNotExist(err) {
			// No pdfimages output means the document has no extractable
			// images, not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("reading image sidecar %s: %w", imageDir, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var rows []types.FigureIndexRow
	for i, name := range names {
		m := pdfImageName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		page, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		target := filepath.Join(outDir, fmt.Sprintf("%s_%s", doc.DocID, name))
		if err := copyFile(filepath.Join(imageDir, name), target); err != nil {
			return nil, fmt.Errorf("copying figure %s: %w", name, err)
		}
		sha, err := artifact.SHA256File(target)
		if err != nil {
			return nil, err
		}

		label := fmt.Sprintf("PDF image %d", i+1)
		rows = append(rows, types.FigureIndexRow{
			FigureID:     newFigureID(),
			DocID:        doc.DocID,
			DOI:          doc.DOI,
			PMID:         doc.PMID,
			LocalDocPath: pdfPath,
			FigurePath:   target,
			SourceType:   "pdf",
			PageNumber:   &page,
			FigureLabel:  &label,
			SHA256:       &sha,
			RetrievedAt:  nowFunc().UTC(),
		})
	}
	return rows, nil
}

// ExtractJATSFigures indexes every <fig> in a JATS file, copying the
// referenced graphic asset into outDir. When the asset is missing the
// caption text is written in its place so downstream figure checks still
// have a file to hash (R2.3).
func ExtractJATSFigures(doc *types.Document, xmlPath, outDir string) ([]types.FigureIndexRow, error) {
	f, err := os.Open(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("opening XML %s: %w", xmlPath, err)
	}
	defer f.Close()
	figs, err := parseJATSFigs(f)
	if err != nil {
		return nil, fmt.Errorf("parsing XML %s: %w", xmlPath, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var rows []types.FigureIndexRow
	for _, fig := range figs {
		figID := fig.id
		if figID == "" {
			figID = "unknown"
		}
		target := filepath.Join(outDir, fmt.Sprintf("%s_%s.bin", doc.DocID, figID))

		copied := false
		if fig.graphicHref != "" {
			src := filepath.Join(filepath.Dir(xmlPath), fig.graphicHref)
			if _, err := os.Stat(src); err == nil {
				if err := copyFile(src, target); err != nil {
					return nil, fmt.Errorf("copying graphic %s: %w", fig.graphicHref, err)
				}
				copied = true
			}
		}
		if !copied {
			fallback := fig.caption
			if fallback == "" {
				fallback = "figure caption unavailable"
			}
			if err := os.WriteFile(target, []byte(fallback), 0o644); err != nil {
				return nil, err
			}
		}
		sha, err := artifact.SHA256File(target)
		if err != nil {
			return nil, err
		}

		row := types.FigureIndexRow{
			FigureID:     newFigureID(),
			DocID:        doc.DocID,
			DOI:          doc.DOI,
			PMID:         doc.PMID,
			LocalDocPath: xmlPath,
			FigurePath:   target,
			SourceType:   "jats",
			XMLFigID:     strPtrIfSet(figID),
			SHA256:       &sha,
			RetrievedAt:  nowFunc().UTC(),
		}
		if fig.label != "" {
			row.FigureLabel = strPtrIfSet(fig.label)
		}
		if fig.caption != "" {
			row.Caption = strPtrIfSet(fig.caption)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// jatsFig is a <fig> element's extracted attributes.
type jatsFig struct {
	id          string
	label       string
	caption     string
	graphicHref string
}

func parseJATSFigs(r io.Reader) ([]jatsFig, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var figs []jatsFig
	var cur *jatsFig
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "fig":
				cur = &jatsFig{id: attr(t, "id")}
			case "label":
				if cur != nil && cur.label == "" {
					text, err := collectElementText(dec, "label")
					if err != nil {
						return nil, err
					}
					cur.label = strings.TrimSpace(text)
				}
			case "caption":
				if cur != nil && cur.caption == "" {
					text, err := collectElementText(dec, "caption")
					if err != nil {
						return nil, err
					}
					cur.caption = strings.TrimSpace(text)
				}
			case "graphic":
				if cur != nil && cur.graphicHref == "" {
					cur.graphicHref = attr(t, "href")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "fig" && cur != nil {
				figs = append(figs, *cur)
				cur = nil
			}
		}
	}
	return figs, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func imageSidecarDir(pdfPath string) string {
	stem := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	return stem + "-images"
}

func newFigureID() string {
	return "fig_" + uuid.NewString()
}

func strPtrIfSet(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// nowFunc is swapped in tests for stable timestamps.
var nowFunc = time.Now
