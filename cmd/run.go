/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/goles/InputParameters"
	"github.com/notargets/goles/model_problems/KinematicLES"
	"github.com/notargets/goles/monitor"
)

type RunLES struct {
	GridFile string
	ICFile   string
	Model    string // overrides the input file when set
	Serve    string // websocket monitor address, off when empty
	Profile  string // cpu or mem
	Verbose  bool
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive a closure with an analytic velocity field and report eddy viscosity statistics",
	Long: `
Builds the mesh (structured, or read from an SU2 or Gambit file), sets up the selected closure and
updates it every step with a prescribed Taylor-Green or shear layer velocity,

goles run -I input.yaml [-F mesh.su2] [--serve :8080]`,
	Run: func(cmd *cobra.Command, args []string) {
		rl := &RunLES{
			GridFile: viper.GetString("gridFile"),
			ICFile:   viper.GetString("inputConditionsFile"),
			Model:    viper.GetString("model"),
			Serve:    viper.GetString("serve"),
			Profile:  viper.GetString("profile"),
			Verbose:  viper.GetBool("verbose"),
		}
		ip, err := processInput(rl)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			fmt.Printf("Example File:%s\n", exampleFile)
			os.Exit(1)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err = Run(ctx, rl, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

var exampleFile = `
########################################
Title: "Test Case"
Model: dynamiclagrangian # smagorinsky, dmm1 or dmm2
RecomputeInterval: 5
Case: taylorgreen # or shearlayer
Nx: 32
Ny: 32
Dt: 0.01
Steps: 100
BCs:
  Wall: 0
########################################
`

func init() {
	rootCmd.AddCommand(RunCmd)
	flags := RunCmd.Flags()
	flags.StringP("gridFile", "F", "", "Grid file to read in SU2 (.su2) or Gambit (.neu) format, a structured mesh is built when empty")
	flags.StringP("inputConditionsFile", "I", "", "YAML or INI (.ini) file for input parameters like:\n\t- Model\n\t- RecomputeInterval\n\t- Case")
	flags.StringP("model", "m", "", "SGS model, overrides the input file")
	flags.String("serve", "", "address for the websocket step monitor, e.g. :8080")
	flags.String("profile", "", "write a cpu or mem profile to the current directory")
	flags.BoolP("verbose", "v", false, "log closure detail")
	for _, name := range []string{"gridFile", "inputConditionsFile", "model", "serve", "profile", "verbose"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func processInput(rl *RunLES) (ip *InputParameters.LESParameters, err error) {
	ip = InputParameters.NewLESParameters()
	if len(rl.ICFile) != 0 {
		if err = ip.ReadFile(rl.ICFile); err != nil {
			return nil, err
		}
	}
	if len(rl.Model) != 0 {
		ip.Model = rl.Model
	}
	if err = ip.Validate(); err != nil {
		return nil, err
	}
	return
}

func Run(ctx context.Context, rl *RunLES, ip *InputParameters.LESParameters) (err error) {
	var (
		c     *KinematicLES.KinematicLES
		final KinematicLES.StepReport
	)
	if rl.Verbose {
		log.SetLevel(log.DebugLevel)
		ip.Print()
	}
	switch rl.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	default:
		return fmt.Errorf("unknown profile type [%s], use cpu or mem", rl.Profile)
	}
	if c, err = KinematicLES.NewKinematicLES(ip, rl.GridFile, rl.Verbose); err != nil {
		return
	}
	if len(rl.Serve) != 0 {
		hub := monitor.NewHub()
		go hub.Run(ctx)
		go func() {
			if err := monitor.Serve(ctx, rl.Serve, hub); err != nil {
				log.WithError(err).Error("monitor stopped")
			}
		}()
		c.Publisher = hub
	}
	if final, err = c.Solve(ctx); err != nil {
		return
	}
	fmt.Println(final.Print())
	return
}
