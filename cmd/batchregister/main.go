// Command batchregister registers a whole folder of images with the recipe
// and homography established from a single reference pair. Every batch image
// must share the reference moving image's raw dimensions; the letterbox
// resize and padding are replayed verbatim, never refitted per file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/olive-groves/butterfly-registrator/internal/config"
	"github.com/olive-groves/butterfly-registrator/internal/register"
)

func main() {
	target := flag.String("t", "", "Path to target (reference) image")
	moving := flag.String("m", "", "Path to reference moving image")
	points := flag.String("p", "", "Path to control point file")
	destDir := flag.String("d", "", "Destination directory for registered outputs")
	cfgPath := flag.String("c", "", "Path to YAML config file")
	overwrite := flag.Bool("overwrite", false, "Replace destination files that already exist")
	forceTarget := flag.Bool("force-target", false, "Load target points even if the stored target filename differs")
	forceMoving := flag.Bool("force-moving", false, "Load moving points even if the stored moving filename differs")
	savePoints := flag.Bool("save-points", false, "Save the applied control points into the destination directory")
	flag.Parse()

	if *target == "" || *moving == "" || *destDir == "" || flag.NArg() == 0 {
		fmt.Println("Usage: batchregister -t <target> -m <moving> -d <destdir> [-p <points.csv>] <image>...")
		os.Exit(1)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	sess := register.NewSession()
	sess.SetPlacementOffset(cfg.PlacementOffset)
	if err := sess.LoadTarget(*target); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load target: %v\n", err)
		os.Exit(1)
	}
	if err := sess.LoadMoving(*moving); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load moving: %v\n", err)
		os.Exit(1)
	}

	if *points != "" {
		targetPts, movingPts, err := register.LoadPoints(*points,
			filepath.Base(*target), filepath.Base(*moving),
			func(c register.FilenameConflict) bool {
				if c.Side == register.SideTarget {
					return *forceTarget
				}
				return *forceMoving
			})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load control points: %v\n", err)
			os.Exit(1)
		}
		if err := sess.SetPoints(targetPts, movingPts); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set control points: %v\n", err)
			os.Exit(1)
		}
	}

	if err := sess.Apply(); err != nil {
		fmt.Fprintf(os.Stderr, "Registration of the reference pair failed: %v\n", err)
		os.Exit(1)
	}
	recipe, homography, _ := sess.Snapshot()
	refGeom, _ := sess.MovingGeometry()

	files := flag.Args()
	if !*overwrite {
		existing := register.ExistingOutputs(files, *destDir, *target, cfg.RegisteredSuffix)
		if len(existing) > 0 {
			fmt.Fprintln(os.Stderr, "These outputs already exist (pass -overwrite to replace them):")
			for _, path := range existing {
				fmt.Fprintf(os.Stderr, "  %s\n", path)
			}
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := register.BatchOptions{
		Quality:   cfg.JPEGQuality,
		Suffix:    cfg.RegisteredSuffix,
		Overwrite: *overwrite,
		Progress: func(processed, total int) {
			fmt.Printf("Registered %d/%d\n", processed, total)
		},
	}
	report, err := register.Replay(ctx, recipe, homography, refGeom, files, *destDir, *target, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch interrupted after %d of %d files: %v\n", report.Total(), len(files), err)
	}

	for _, path := range report.Mismatched {
		fmt.Printf("Skipped %s: dimensions differ from the reference moving image\n", path)
	}
	for _, f := range report.Failed {
		if errors.Is(f.Err, os.ErrExist) {
			fmt.Printf("Skipped %s: output already exists\n", f.Path)
		} else {
			fmt.Printf("Failed %s: %v\n", f.Path, f.Err)
		}
	}
	fmt.Printf("Done: %d registered, %d skipped, %d failed\n",
		len(report.Succeeded), len(report.Mismatched), len(report.Failed))

	if *savePoints && len(report.Succeeded) > 0 {
		set := sess.Points()
		names := make([]string, len(report.Succeeded))
		for i, path := range report.Succeeded {
			names[i] = filepath.Base(path)
		}
		name := register.PointsFilename(*moving, *target, true, time.Now())
		path := filepath.Join(*destDir, name)
		tq, mq := set.TargetQuad(), set.MovingQuad()
		if err := register.SavePoints(path, filepath.Base(*target),
			tq[:], names, mq[:]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save control points: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Control points written to %s\n", path)
	}

	if len(report.Failed) > 0 || err != nil {
		os.Exit(1)
	}
}
