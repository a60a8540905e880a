// Command points inspects a control point file and prints its contents.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/olive-groves/butterfly-registrator/internal/register"
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Println("Usage: points <points.csv>")
		os.Exit(1)
	}

	pf, err := register.ReadPointsFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read control points: %v\n", err)
		os.Exit(1)
	}

	if pf.Producer != "" {
		fmt.Printf("Producer: %s (version %s)\n", pf.Producer, pf.Version)
	}
	fmt.Printf("Target:   %s\n", pf.TargetName)
	fmt.Printf("Moving:   %s\n", strings.Join(pf.MovingNames, ", "))
	fmt.Println()
	fmt.Println("  #        target x        target y        moving x        moving y")
	for i := range pf.TargetPoints {
		fmt.Printf("  %d  %14.2f  %14.2f  %14.2f  %14.2f\n", i+1,
			pf.TargetPoints[i].X, pf.TargetPoints[i].Y,
			pf.MovingPoints[i].X, pf.MovingPoints[i].Y)
	}
}
