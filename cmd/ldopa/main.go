package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ldopa/core"
	pkgconfig "ldopa/pkg/config"
)

func main() {
	rootCmd := &cobra.Command{Use: "ldopa"}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(dumpConfigCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func dumpConfigCmd() *cobra.Command {
	var env string
	cmd := &cobra.Command{
		Use:   "dump-config",
		Short: "print the resolved pipeline configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pkgconfig.Load(env)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
	cmd.Flags().StringVar(&env, "env", "", "configuration environment name (merged over the default config)")
	return cmd
}

func runCmd() *cobra.Command {
	var (
		inputPath       string
		outputPath      string
		env             string
		theta           float64
		windowSize      int
		maxWindow       int
		vwsCoefficient  float64
		zsaPolicy       string
		selfLoopPolicy  string
		maxStates       int
		makeWorkflowNet bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the full build -> condense -> rebuild -> sas -> sloop -> synth -> dot pipeline over a CSV event log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pkgconfig.Load(env)
			if err != nil {
				logrus.Warnf("ldopa: no config file found (%v), using command-line flags only", err)
				cfg = &pkgconfig.AppConfig
			}
			if !cmd.Flags().Changed("theta") && cfg.Condenser.Theta > 0 {
				theta = cfg.Condenser.Theta
			}
			if !cmd.Flags().Changed("window") && cfg.Builder.WindowSize > 0 {
				windowSize = cfg.Builder.WindowSize
			}
			if !cmd.Flags().Changed("make-wfnet") {
				makeWorkflowNet = cfg.Synthesis.MakeWorkflowNet
			}

			log := logrus.New()
			if lvl, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
				log.SetLevel(lvl)
			}

			return runPipeline(pipelineOptions{
				inputPath:       inputPath,
				outputPath:      outputPath,
				theta:           theta,
				windowSize:      windowSize,
				maxWindow:       maxWindow,
				vwsCoefficient:  vwsCoefficient,
				zsaPolicy:       zsaPolicy,
				selfLoopPolicy:  selfLoopPolicy,
				maxStates:       maxStates,
				makeWorkflowNet: makeWorkflowNet,
				log:             log,
			})
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to a CSV event log (trace_id,activity[,attr]*)")
	cmd.Flags().StringVar(&outputPath, "output", "", "path to write the synthesized workflow net as DOT")
	cmd.Flags().StringVar(&env, "env", "", "configuration environment name (merged over the default config)")
	cmd.Flags().Float64Var(&theta, "theta", 0.1, "frequency condensation threshold in [0,1]")
	cmd.Flags().IntVar(&windowSize, "window", 0, "prefix window size used by the builder (0 = unbounded)")
	cmd.Flags().IntVar(&maxWindow, "max-window", 0, "maximum window size the rebuilder may widen to (0 = no widening)")
	cmd.Flags().Float64Var(&vwsCoefficient, "vws-coefficient", 1.0, "variable-window widening coefficient")
	cmd.Flags().StringVar(&zsaPolicy, "zsa-policy", "drop-trace", "zero-state-acquisition policy: drop-trace | spec-state | new-chain")
	cmd.Flags().StringVar(&selfLoopPolicy, "self-loop-policy", "ignore", "region synthesis self-loop policy: ignore | reestablish | process")
	cmd.Flags().IntVar(&maxStates, "max-states", 20, "brute-force region search bound; condense more aggressively if exceeded")
	cmd.Flags().BoolVar(&makeWorkflowNet, "make-wfnet", true, "add synthetic source/sink places and enforce the workflow-net postcondition")
	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

type pipelineOptions struct {
	inputPath       string
	outputPath      string
	theta           float64
	windowSize      int
	maxWindow       int
	vwsCoefficient  float64
	zsaPolicy       string
	selfLoopPolicy  string
	maxStates       int
	makeWorkflowNet bool
	log             *logrus.Logger
}

func parseZSAPolicy(s string) (core.ZSAPolicy, error) {
	switch s {
	case "drop-trace":
		return core.ZSADropTrace, nil
	case "spec-state":
		return core.ZSASpecState, nil
	case "new-chain":
		return core.ZSANewChain, nil
	default:
		return 0, core.NewError(core.CodeInvalidArgument, fmt.Sprintf("unknown zsa-policy %q", s))
	}
}

func parseSelfLoopPolicy(s string) (core.SelfLoopPolicy, error) {
	switch s {
	case "ignore":
		return core.SLIgnore, nil
	case "reestablish":
		return core.SLReestablish, nil
	case "process":
		return core.SLProcess, nil
	default:
		return 0, core.NewError(core.CodeInvalidArgument, fmt.Sprintf("unknown self-loop-policy %q", s))
	}
}

func runPipeline(opts pipelineOptions) error {
	zsa, err := parseZSAPolicy(opts.zsaPolicy)
	if err != nil {
		return err
	}
	slp, err := parseSelfLoopPolicy(opts.selfLoopPolicy)
	if err != nil {
		return err
	}

	pool := core.NewIDPool()
	csvLog, err := core.NewCSVEventLog(func() (io.ReadCloser, error) {
		return os.Open(opts.inputPath)
	})
	if err != nil {
		return err
	}

	builder := core.NewBuilder(core.BuilderConfig{
		StateFn:       core.PrefixStateFunc(opts.windowSize),
		MaxWindowSize: opts.windowSize,
	}, opts.log)
	ts, err := builder.Build(pool, csvLog, nil)
	if err != nil {
		return err
	}
	opts.log.Infof("build: %d states, %d transitions", ts.NumStates(), ts.NumTrans())

	condenser, err := core.NewCondenser(opts.theta, opts.log)
	if err != nil {
		return err
	}
	condensed, err := condenser.Condense(ts, nil)
	if err != nil {
		return err
	}

	var rebuilt *core.EventLogTS
	if opts.maxWindow > 0 {
		rebuilder := core.NewVWRebuilder(core.VWRebuilderConfig{
			InitialWindowSize: opts.windowSize,
			MaxWindowSize:     opts.maxWindow,
			Coefficient:       opts.vwsCoefficient,
			ZSA:               zsa,
		}, opts.log)
		if err := csvLog.Reset(); err != nil {
			return err
		}
		rebuilt, err = rebuilder.Rebuild(pool, condensed, csvLog, nil)
		if err != nil {
			return err
		}
	} else {
		rebuilt = condensed
	}

	sasConverted := core.NewSASConverter(opts.log).Convert(rebuilt)
	sloopConverted := core.NewSLoopConverter(opts.log).Convert(sasConverted)

	synth := core.NewRegionSynthesizer(opts.maxStates, opts.log)
	if err := synth.Configure(sloopConverted, slp, opts.makeWorkflowNet); err != nil {
		return err
	}
	if err := synth.Synthesize(nil); err != nil {
		return err
	}

	out, err := os.Create(opts.outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return core.WritePetriNetDOT(out, synth.GetPN(), synth.GetInitialMarking())
}
