package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridpointai/nd-runtime/array"
	"github.com/gridpointai/nd-runtime/callback"
	"github.com/gridpointai/nd-runtime/ndimage"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a CSV grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		outPath, _ := cmd.Flags().GetString("out")
		op, _ := cmd.Flags().GetString("op")
		size, _ := cmd.Flags().GetInt("size")
		rank, _ := cmd.Flags().GetInt("rank")
		weightsStr, _ := cmd.Flags().GetString("weights")
		script, _ := cmd.Flags().GetString("script")
		fnName, _ := cmd.Flags().GetString("fn")

		in, err := loadGrid(inPath)
		if err != nil {
			return err
		}
		out := array.Zeros(array.Float64, in.Dims())
		logger.Info("filtering grid",
			zap.String("op", op),
			zap.Ints("dims", in.Dims()),
			zap.String("mode", mode.String()),
		)

		foot := boxFootprint(size)
		switch {
		case script != "":
			lc, err := callback.LoadLuaFile(script, fnName)
			if err != nil {
				return err
			}
			err = ndimage.GenericFilter(in, out, lc, foot, mode, cfg.Cval, nil, nil)
			if err != nil {
				return err
			}
		case op == "uniform":
			tmp := array.Zeros(array.Float64, in.Dims())
			if err := ndimage.UniformFilter1D(in, tmp, 0, size, mode, cfg.Cval, 0); err != nil {
				return err
			}
			if err := ndimage.UniformFilter1D(tmp, out, 1, size, mode, cfg.Cval, 0); err != nil {
				return err
			}
		case op == "min" || op == "max":
			if err := ndimage.MinOrMaxFilter(in, foot, nil, out, mode, cfg.Cval, nil, op == "min"); err != nil {
				return err
			}
		case op == "rank":
			if err := ndimage.RankFilter(in, rank, foot, out, mode, cfg.Cval, nil); err != nil {
				return err
			}
		case op == "correlate":
			weights, err := parseFloats(weightsStr)
			if err != nil {
				return err
			}
			w, err := array.FromFloat64s(weights, 1, len(weights))
			if err != nil {
				return err
			}
			if err := ndimage.Correlate(in, w, out, mode, cfg.Cval, nil); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown filter op %q", op)
		}

		if outPath == "" {
			fmt.Println(renderGrid(out))
			return nil
		}
		return saveGrid(outPath, out)
	},
}

var zoomCmd = &cobra.Command{
	Use:   "zoom",
	Short: "Resample a CSV grid by a zoom factor",
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		outPath, _ := cmd.Flags().GetString("out")
		factor, _ := cmd.Flags().GetFloat64("factor")
		order, _ := cmd.Flags().GetInt("order")

		if factor <= 0 {
			return fmt.Errorf("zoom factor must be positive, got %v", factor)
		}
		in, err := loadGrid(inPath)
		if err != nil {
			return err
		}

		dims := make([]int, in.Rank())
		zooms := make([]float64, in.Rank())
		for d := range dims {
			dims[d] = int(float64(in.Dim(d)) * factor)
			if dims[d] < 1 {
				dims[d] = 1
			}
			if dims[d] > 1 {
				zooms[d] = float64(in.Dim(d)-1) / float64(dims[d]-1)
			} else {
				zooms[d] = 1
			}
		}
		out := array.Zeros(array.Float64, dims)

		filtered := in
		if order > 1 {
			tmp := array.Zeros(array.Float64, in.Dims())
			filtered = array.Zeros(array.Float64, in.Dims())
			if err := ndimage.SplineFilter1D(in, tmp, order, 0); err != nil {
				return err
			}
			if err := ndimage.SplineFilter1D(tmp, filtered, order, 1); err != nil {
				return err
			}
		}
		logger.Info("zooming grid",
			zap.Float64("factor", factor),
			zap.Int("order", order),
			zap.Ints("from", in.Dims()),
			zap.Ints("to", dims),
		)
		if err := ndimage.ZoomShift(filtered, out, zooms, nil, order, mode, cfg.Cval); err != nil {
			return err
		}

		if outPath == "" {
			fmt.Println(renderGrid(out))
			return nil
		}
		return saveGrid(outPath, out)
	},
}

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Report bounding boxes of labels in a CSV grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		maxLabel, _ := cmd.Flags().GetInt("max")

		in, err := loadGrid(inPath)
		if err != nil {
			return err
		}
		if maxLabel == 0 {
			for i := 0; i < in.Len(); i++ {
				if v := int(in.Float64At(i)); v > maxLabel {
					maxLabel = v
				}
			}
		}

		regions, err := ndimage.FindObjects(in, maxLabel)
		if err != nil {
			return err
		}
		for i, r := range regions {
			if r == nil {
				fmt.Printf("label %d: absent\n", i+1)
				continue
			}
			fmt.Printf("label %d: rows [%d,%d) cols [%d,%d)\n", i+1, r[0].Start, r[0].Stop, r[1].Start, r[1].Stop)
		}
		return nil
	},
}

// boxFootprint builds a size x size footprint of ones.
func boxFootprint(size int) *array.Array {
	if size < 1 {
		size = 1
	}
	vals := make([]float64, size*size)
	for i := range vals {
		vals[i] = 1
	}
	f, err := array.FromFloat64s(vals, size, size)
	if err != nil {
		panic(err)
	}
	return f
}

func init() {
	filterCmd.Flags().String("in", "", "input CSV grid")
	filterCmd.Flags().String("out", "", "output CSV path (prints when empty)")
	filterCmd.Flags().String("op", "uniform", "filter op: uniform, min, max, rank, correlate")
	filterCmd.Flags().Int("size", 3, "filter size")
	filterCmd.Flags().Int("rank", 0, "rank for the rank filter")
	filterCmd.Flags().String("weights", "", "comma-separated weights for correlate")
	filterCmd.Flags().String("script", "", "Lua script providing a window function")
	filterCmd.Flags().String("fn", "filter", "Lua function name")
	filterCmd.MarkFlagRequired("in")

	zoomCmd.Flags().String("in", "", "input CSV grid")
	zoomCmd.Flags().String("out", "", "output CSV path (prints when empty)")
	zoomCmd.Flags().Float64("factor", 2, "zoom factor")
	zoomCmd.Flags().Int("order", 1, "spline order (0-5)")
	zoomCmd.MarkFlagRequired("in")

	objectsCmd.Flags().String("in", "", "input CSV label grid")
	objectsCmd.Flags().Int("max", 0, "highest label (0 scans the grid)")
	objectsCmd.MarkFlagRequired("in")
}
