// Command register aligns a moving image onto a target image using a
// four-point correspondence and writes the warped result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olive-groves/butterfly-registrator/internal/config"
	"github.com/olive-groves/butterfly-registrator/internal/raster"
	"github.com/olive-groves/butterfly-registrator/internal/register"
	"github.com/olive-groves/butterfly-registrator/pkg/geometry"
)

func main() {
	target := flag.String("t", "", "Path to target (reference) image")
	moving := flag.String("m", "", "Path to moving image")
	points := flag.String("p", "", "Path to control point file (optional; default placements letterbox only)")
	out := flag.String("o", "", "Output path (default: next to the moving image)")
	cfgPath := flag.String("c", "", "Path to YAML config file")
	forceTarget := flag.Bool("force-target", false, "Load target points even if the stored target filename differs")
	forceMoving := flag.Bool("force-moving", false, "Load moving points even if the stored moving filename differs")
	savePoints := flag.String("save-points", "", "Also save the applied control points to this file")
	flag.Parse()

	if *target == "" || *moving == "" {
		fmt.Println("Usage: register -t <target> -m <moving> [-p <points.csv>] [-o <output>]")
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

	fmt.Printf("=== Loading target: %s ===\n", *target)
	if err := sess.LoadTarget(*target); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load target: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== Loading moving: %s ===\n", *moving)
	if err := sess.LoadMoving(*moving); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load moving: %v\n", err)
		os.Exit(1)
	}

	if *points != "" {
		targetPts, movingPts, err := register.LoadPoints(*points,
			filepath.Base(*target), filepath.Base(*moving),
			conflictResolver(*forceTarget, *forceMoving))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load control points: %v\n", err)
			os.Exit(1)
		}
		if err := sess.SetPoints(targetPts, movingPts); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set control points: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("=== Registering ===")
	if err := sess.Apply(); err != nil {
		if errors.Is(err, register.ErrDegenerateConfiguration) {
			fmt.Fprintln(os.Stderr, "Control points are degenerate (coincident or collinear); adjust them and retry.")
		} else {
			fmt.Fprintf(os.Stderr, "Registration failed: %v\n", err)
		}
		os.Exit(1)
	}

	dest := *out
	if dest == "" {
		dest = filepath.Join(filepath.Dir(*moving),
			register.RegisteredName(*moving, *target, cfg.RegisteredSuffix))
	}
	if err := writeResult(sess, dest, cfg.JPEGQuality); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save result: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registered image written to %s\n", dest)

	if *savePoints != "" {
		set := sess.Points()
		if err := register.SavePoints(*savePoints,
			filepath.Base(*target), quadSlice(set.TargetQuad()),
			[]string{filepath.Base(*moving)}, quadSlice(set.MovingQuad())); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save control points: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Control points written to %s\n", *savePoints)
	}
}

// conflictResolver turns the force flags into a resolver: a forced side
// loads despite the filename mismatch, otherwise the mismatch is reported
// and that side keeps its current points.
func conflictResolver(forceTarget, forceMoving bool) register.ConflictResolver {
	return func(c register.FilenameConflict) bool {
		force := forceMoving
		if c.Side == register.SideTarget {
			force = forceTarget
		}
		if !force {
			fmt.Printf("Skipping %s points: file names %v, loaded %q (use -force-%s to load anyway)\n",
				c.Side, c.Stored, c.Current, c.Side)
		}
		return force
	}
}

func writeResult(sess *register.Session, dest string, quality int) error {
	result := sess.Result()
	if result == nil {
		return fmt.Errorf("no registered result")
	}
	return raster.Encode(dest, result, quality)
}

func quadSlice(q geometry.Quad) []geometry.Point2D {
	return q[:]
}
