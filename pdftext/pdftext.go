// Package pdftext extracts the text of tabular PDF reports as per-page lines.
// It decompresses each page's content stream with pdfcpu, tokenizes the text
// operators directly, and groups the shown strings into lines using the text
// positioning operators. Hex-encoded glyph strings are decoded through the
// page fonts' ToUnicode CMaps.
package pdftext

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Page holds the extracted text of one PDF page. Each line is the list of
// text cells shown between line moves, in reading order.
type Page struct {
	Number int
	Lines  [][]string
}

// ExtractPages opens a PDF and returns the text lines of every page that has
// a content stream.
func ExtractPages(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := pdfcpu.OptimizeXRefTable(ctx); err != nil {
		return nil, fmt.Errorf("optimize xref: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	var pages []Page
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d dict: %w", i, err)
		}

		obj, found := pageDict.Find("Contents")
		if !found {
			continue
		}
		stream, err := resolveContents(ctx, obj)
		if err != nil {
			return nil, fmt.Errorf("page %d content stream: %w", i, err)
		}

		glyphs, err := pageGlyphMap(ctx, pageDict)
		if err != nil {
			return nil, fmt.Errorf("page %d fonts: %w", i, err)
		}

		pages = append(pages, Page{
			Number: i,
			Lines:  groupLines(textItems(stream, glyphs)),
		})
	}

	return pages, nil
}

// resolveContents dereferences and decompresses a Contents entry, which may
// be a single stream or an array of streams.
func resolveContents(ctx *model.Context, obj types.Object) ([]byte, error) {
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case types.StreamDict:
		if err := v.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return v.Content, nil

	case types.Array:
		var buf bytes.Buffer
		for _, item := range v {
			data, err := resolveContents(ctx, item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unexpected Contents type: %T", obj)
	}
}

// pageGlyphMap merges the ToUnicode CMaps of every font the page declares.
// Pages whose fonts carry no ToUnicode stream get an empty map; hex strings
// then fall back to identity decoding.
func pageGlyphMap(ctx *model.Context, pageDict types.Dict) (CMap, error) {
	merged := make(CMap)

	resObj, found := pageDict.Find("Resources")
	if !found {
		return merged, nil
	}
	resources, err := ctx.DereferenceDict(resObj)
	if err != nil || resources == nil {
		return merged, err
	}

	fontObj, found := resources.Find("Font")
	if !found {
		return merged, nil
	}
	fonts, err := ctx.DereferenceDict(fontObj)
	if err != nil || fonts == nil {
		return merged, err
	}

	for _, ref := range fonts {
		font, err := ctx.DereferenceDict(ref)
		if err != nil || font == nil {
			continue
		}
		tuObj, found := font.Find("ToUnicode")
		if !found {
			continue
		}
		tu, err := ctx.Dereference(tuObj)
		if err != nil {
			continue
		}
		sd, ok := tu.(types.StreamDict)
		if !ok {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		for gid, r := range ParseCMap(sd.Content) {
			merged[gid] = r
		}
	}

	return merged, nil
}

// groupLines splits text items into lines at the empty-string break markers
// the tokenizer emits for line moves. Adjacent breaks collapse.
func groupLines(items []string) [][]string {
	var lines [][]string
	var current []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			if len(current) > 0 {
				lines = append(lines, current)
				current = nil
			}
			continue
		}
		current = append(current, item)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}
