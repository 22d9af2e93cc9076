package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"deja-vocab/internal/types"
	"deja-vocab/log"
	"deja-vocab/pkg/subtitle"

	"github.com/spf13/cobra"
)

type output struct {
	Filtered int               `json:"filtered"`
	Fallback bool              `json:"fallback"`
	Cues     []types.MergedCue `json:"cues"`
}

func profileConfig(name string) (subtitle.MergeConfig, error) {
	switch name {
	case "default", "":
		return subtitle.DefaultMergeConfig(), nil
	case "direct":
		return subtitle.DirectFetchMergeConfig(), nil
	case "auto":
		return subtitle.AutoFetchMergeConfig(), nil
	}
	return subtitle.MergeConfig{}, fmt.Errorf("unknown profile %q", name)
}

func mergeConfigFromFlags(cmd *cobra.Command) (subtitle.MergeConfig, error) {
	profile, _ := cmd.Flags().GetString("profile")
	cfg, err := profileConfig(profile)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("max-gap") {
		cfg.MaxGap, _ = cmd.Flags().GetFloat64("max-gap")
		if cfg.MaxGap < 0 {
			return cfg, fmt.Errorf("--max-gap must be >= 0")
		}
	}
	if cmd.Flags().Changed("max-duration") {
		cfg.MaxDuration, _ = cmd.Flags().GetFloat64("max-duration")
		if cfg.MaxDuration <= 0 {
			return cfg, fmt.Errorf("--max-duration must be > 0")
		}
	}
	if cmd.Flags().Changed("max-chars") {
		cfg.MaxChars, _ = cmd.Flags().GetInt("max-chars")
		if cfg.MaxChars <= 0 {
			return cfg, fmt.Errorf("--max-chars must be > 0")
		}
	}
	return cfg, nil
}

func readRecords(cmd *cobra.Command, input string) ([]any, error) {
	var r io.Reader
	if input == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", input, err)
	}
	return records, nil
}

func run(cmd *cobra.Command, input string) error {
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if err := log.InitLogger(level); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}

	cfg, err := mergeConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != "json" && format != "srt" && format != "context" {
		return fmt.Errorf("unknown format %q", format)
	}

	records, err := readRecords(cmd, input)
	if err != nil {
		return err
	}

	p := subtitle.NewPipeline(cfg)
	p.SkipMerge, _ = cmd.Flags().GetBool("skip-merge")
	res, err := p.Run(records)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "srt":
		return subtitle.WriteSrt(out, res.Merged)
	case "context":
		title, _ := cmd.Flags().GetString("title")
		videoId, _ := cmd.Flags().GetString("video-id")
		limit, _ := cmd.Flags().GetInt("limit")
		_, err = io.WriteString(out, subtitle.FormatContext(title, videoId, res.Merged, limit))
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(output{Filtered: len(res.Filtered), Fallback: res.Fallback, Cues: res.Merged})
}
