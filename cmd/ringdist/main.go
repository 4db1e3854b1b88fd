package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/lab5e/shardfunk/pkg/routing"
	"github.com/lab5e/shardfunk/pkg/shard"
	"github.com/lab5e/shardfunk/pkg/toolbox"
)

// This program renders the key distribution of a consistent hash ring as
// an image, one color per shard, and reports how many keys move when a
// shard is added. Useful to eyeball the smoothness of the distribution for
// different virtual node counts.

type parameters struct {
	Topology     string `kong:"help='Topology YAML file',required,type='existingfile'"`
	Keys         int    `kong:"help='Number of sample keys',default='65536'"`
	VirtualNodes int    `kong:"help='Virtual nodes per shard weight unit',default='150'"`
	AddShard     string `kong:"help='Add a shard with this ID and show the movement'"`
	Out          string `kong:"help='Output file prefix',default='ringdist'"`
}

var shardColors = []color.NRGBA{
	{R: 255, G: 0, B: 0, A: 255},   // red
	{R: 0, G: 255, B: 0, A: 255},   // green
	{R: 0, G: 0, B: 255, A: 255},   // blue
	{R: 255, G: 255, B: 0, A: 255}, // yellow
	{R: 0, G: 255, B: 255, A: 255}, // cyan
	{R: 255, G: 0, B: 255, A: 255}, // purple
}

func dumpImage(name string, top *shard.Topology, router *routing.HashRouter, keys int) {
	width := 256
	height := keys / width
	if keys%width > 0 {
		height++
	}
	colorMap := make(map[string]color.NRGBA)
	for i, id := range top.ActiveIDs() {
		colorMap[id] = shardColors[i%len(shardColors)]
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	keyNo := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if keyNo < keys {
				id, err := router.Resolve(fmt.Sprintf("key-%d", keyNo))
				if err != nil {
					logrus.WithError(err).Fatal("Unable to resolve sample key")
				}
				img.Set(x, y, colorMap[id])
			} else {
				img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
			keyNo++
		}
	}
	f, err := os.Create(name)
	if err != nil {
		logrus.WithError(err).Fatal("Unable to create image file")
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		logrus.WithError(err).Fatal("Unable to encode image")
	}
	logrus.WithField("file", name).Info("Wrote distribution image")
}

func main() {
	var config parameters
	k, err := kong.New(&config, kong.Name("ringdist"),
		kong.Description("Hash ring distribution visualizer"),
		kong.UsageOnError())
	if err != nil {
		panic(err)
	}
	if _, err := k.Parse(os.Args[1:]); err != nil {
		k.FatalIfErrorf(err)
		return
	}

	top, err := shard.LoadTopologyFile(config.Topology)
	if err != nil {
		logrus.WithError(err).Fatal("Unable to load topology")
	}
	cfg := routing.HashConfig{VirtualNodesPerShard: config.VirtualNodes}
	var router *routing.HashRouter
	toolbox.TimeCall(func() {
		router, err = routing.NewHashRouter(top, cfg)
	}, "BuildRing")
	if err != nil {
		logrus.WithError(err).Fatal("Unable to build hash router")
	}

	counts := make(map[string]int)
	for i := 0; i < config.Keys; i++ {
		id, err := router.Resolve(fmt.Sprintf("key-%d", i))
		if err != nil {
			logrus.WithError(err).Fatal("Unable to resolve sample key")
		}
		counts[id]++
	}
	for id, n := range counts {
		logrus.WithFields(logrus.Fields{
			"shard": id,
			"keys":  n,
			"share": fmt.Sprintf("%.2f%%", 100*float64(n)/float64(config.Keys)),
		}).Info("Shard key share")
	}
	dumpImage(config.Out+"_before.png", top, router, config.Keys)

	if config.AddShard == "" {
		return
	}

	newTop, err := top.WithShard(shard.New(config.AddShard, config.AddShard))
	if err != nil {
		logrus.WithError(err).Fatal("Unable to add shard")
	}
	var newRouter *routing.HashRouter
	toolbox.TimeCall(func() {
		newRouter, err = routing.NewHashRouter(newTop, cfg)
	}, "BuildNewRing")
	if err != nil {
		logrus.WithError(err).Fatal("Unable to build new hash router")
	}

	movements := routing.AffectedRanges(router.Ring(), newRouter.Ring())
	moved := 0
	for i := 0; i < config.Keys; i++ {
		key := fmt.Sprintf("key-%d", i)
		before, _ := router.Resolve(key)
		after, _ := newRouter.Resolve(key)
		if before != after {
			moved++
			// Sanity: the moved key must be covered by a planned movement.
			if !covered(movements, xxhash.Sum64String(key)) {
				logrus.WithField("key", key).Warning("Moved key not covered by a planned movement")
			}
		}
	}
	logrus.WithFields(logrus.Fields{
		"addedShard": config.AddShard,
		"movements":  len(movements),
		"movedKeys":  moved,
		"share":      fmt.Sprintf("%.2f%%", 100*float64(moved)/float64(config.Keys)),
	}).Info("Rebalance plan")
	dumpImage(config.Out+"_after.png", newTop, newRouter, config.Keys)
}

func covered(movements []routing.Movement, pos uint64) bool {
	for _, m := range movements {
		if m.Start > m.End {
			// wraps through zero
			if pos > m.Start || pos <= m.End {
				return true
			}
			continue
		}
		if pos > m.Start && pos <= m.End {
			return true
		}
	}
	return false
}
