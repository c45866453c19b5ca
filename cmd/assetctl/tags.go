package main

import (
	"context"
	"fmt"
	"time"

	"assettrack/internal/domain/entity"
	"assettrack/internal/domain/service"
	"assettrack/internal/errors"
	"assettrack/internal/usecase"
	"assettrack/internal/util"
)

func runGenerate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("generate", "-id <asset id> [-kind qr|barcode|nfc] [-category movable -index 0]")
	id := fs.String("id", "", "Asset id")
	kindFlag := fs.String("kind", "qr", "qr, barcode or nfc")
	category := fs.String("category", "", "Sub-asset collection: movable or immovable")
	index := fs.Int("index", 0, "Sub-asset position within -category")
	timeout := fs.Duration("timeout", 0, "Give up waiting after this long (defaults to tagGeneration.maxElapsed plus the initial delay)")
	_ = fs.Parse(args)

	if *id == "" {
		return errors.New("-id is required")
	}
	kind, ok := entity.ParseTagKind(*kindFlag)
	if !ok {
		return errors.Errorf("unknown tag kind %q", *kindFlag)
	}

	target := usecase.TagTarget{AssetID: *id, Kind: kind}
	if *category != "" {
		target.SubAsset = &service.SubAssetRef{Category: *category, Index: *index}
	}

	wait := *timeout
	if wait <= 0 {
		wait = a.cfg.TagGeneration.InitialDelay + a.cfg.TagGeneration.MaxElapsed
	}

	start := time.Now()
	if _, err := a.tags.Generate(ctx, target, nil); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Requested %s tag for %s, waiting up to %s...\n", kind, target.Key(), util.ShortDuration(wait))

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	status, err := a.tags.Wait(waitCtx, target)
	if err != nil {
		a.tags.Close(target)

		return err
	}
	if status.State != usecase.TagFlowSuccess {
		return errors.Errorf("tag generation ended in state %s: %s", status.State, status.Error)
	}

	fmt.Fprintf(a.out, "%s tag ready after %s\n", kind, util.ShortDuration(time.Since(start)))
	if status.Tag != nil {
		fmt.Fprintf(a.out, "Image: %s\n", status.Tag.URL)
		fmt.Fprintf(a.out, "Tag id: %s\n", status.Tag.Data.TagID)
	}

	return nil
}
