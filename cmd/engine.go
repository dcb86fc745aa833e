/*
Copyright © 2026 The GiziSehat Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gizisehat/gizi/internal/iophoto"
	"github.com/gizisehat/gizi/internal/ioreference"
	"github.com/gizisehat/gizi/internal/ioservice"
	"github.com/gizisehat/gizi/internal/iostore"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

// openEngine loads reference data, opens storage and wires the photo
// gateway when photo.url is set. The caller closes the engine.
func openEngine(ctx context.Context) (gizi.Gizi, error) {
	data, err := ioreference.New(cfg.Reference.File).Load(ctx)
	if err != nil {
		return nil, err
	}

	repo, err := iostore.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svcOpts := []ioservice.Option{
		ioservice.OptPhotoTimeout(cfg.PhotoTimeout()),
	}
	if cfg.Photo.URL != "" {
		photo := iophoto.New(cfg.Photo, iophoto.OptFoods(data.Catalog.Items()))
		svcOpts = append(svcOpts, ioservice.OptPhotoAnalyzer(photo))
	}
	return ioservice.New(data, repo, svcOpts...), nil
}

// withEngine runs fn with an open engine and reports its error.
func withEngine(fn func(ctx context.Context, svc gizi.Gizi) error) error {
	ctx := context.Background()
	svc, err := openEngine(ctx)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	defer svc.Close()

	if err = fn(ctx, svc); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	return nil
}

// output prints v as JSON with --json, otherwise calls text.
func output(v any, text func()) error {
	if !jsonOutput {
		text()
		return nil
	}
	enc := gnfmt.GNjson{Pretty: true}
	b, err := enc.Encode(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(b))
	return nil
}

// day returns s, or today when s is empty.
func day(s string) string {
	if s == "" {
		return nutrient.DateOf(time.Now())
	}
	return s
}
