package main

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/pashuvision/internal/samples"
)

var (
	seedValue uint64
	seedForce bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the sample registration set into the local store",
	Long: `Write the sample registration set into the local store.

The store must be empty unless --force is given. A non-zero --seed makes the
generated set reproducible.

Examples:
  pashuctl seed
  pashuctl seed --seed 42 --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remote() {
			return fmt.Errorf("seed operates on the local store only")
		}
		ctx := cmd.Context()

		l, err := openLocal(ctx)
		if err != nil {
			return err
		}
		defer l.Close()

		count, err := l.infra.Store.Count(ctx)
		if err != nil {
			return wrap("count store", err)
		}
		if count > 0 && !seedForce {
			return fmt.Errorf("store already holds %d registrations, use --force to add samples", count)
		}

		seed := seedValue
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed>>1))

		start := time.Now()
		written := 0
		for _, reg := range samples.Generate(rng, start) {
			if err := l.infra.Store.Upsert(ctx, &reg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "skip %s: %v\n", reg.ID, err)
				continue
			}
			written++
		}

		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d registrations in %s\n", written, elapsed(start))
		return nil
	},
}

func init() {
	seedCmd.Flags().Uint64Var(&seedValue, "seed", 0, "random seed (0 uses the current time)")
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "seed even when the store is not empty")
	rootCmd.AddCommand(seedCmd)
}
