package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dcnetlab/dcipam/export"
	"github.com/dcnetlab/dcipam/graph"
	"github.com/dcnetlab/dcipam/ipam"
	"github.com/dcnetlab/dcipam/logger"
	"github.com/dcnetlab/dcipam/topology"
)

const (
	flagConfig       = "config"
	flagTopology     = "topology"
	flagOutput       = "output"
	flagSummary      = "summary"
	flagLogLevel     = "log-level"
	flagLogEncoding  = "log-encoding"
	flagDistribution = "distribution"
	flagEndpointVLAN = "endpoint-vlans"
	flagSharedVLANs  = "shared-switch-vlans"

	flagNumASW          = "asw"
	flagNumESW          = "esw"
	flagEndpointsPerESW = "endpoints-per-esw"
	flagK               = "k"
	flagServersPerESW   = "servers-per-esw"
	flagNumSpine        = "spine"
	flagNumLeaf         = "leaf"
	flagServersPerLeaf  = "servers-per-leaf"
)

func newGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Builds a fabric topology, runs the allocation pass and emits node-link JSON",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := viper.GetString(flagConfig)
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
				if err := viper.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "failed to read config file %s", cfgFile)
				}
				return nil
			}

			b, _ := json.Marshal(ipam.DefaultConfig)
			viper.SetConfigType("json")
			if err := viper.ReadConfig(bytes.NewBuffer(b)); err != nil {
				return errors.Wrap(err, "failed to read in default config")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return generate()
		},
	}

	f := generateCmd.Flags()
	f.String(flagConfig, "", "path to an allocation config file (JSON)")
	f.String(flagTopology, ipam.TopologyThreeTier, "topology type: 3-tier, fat-tree, spine-leaf or collapsed-core")
	f.String(flagOutput, "-", "node-link JSON destination, - for stdout")
	f.Bool(flagSummary, false, "print an allocation summary to stderr")
	f.String(flagLogLevel, "info", "log level")
	f.String(flagLogEncoding, "console", "log encoding: console or json")
	f.String(flagDistribution, "", "endpoint VLAN distribution: single, equal or random")
	f.IntSlice(flagEndpointVLAN, nil, "VLAN ids for the equal/random distributions")
	f.Bool(flagSharedVLANs, false, "all switches share one interface VLAN")

	f.Int(flagNumASW, topology.DefaultThreeTierConfig.NumASW, "3-tier: aggregation switch count")
	f.Int(flagNumESW, topology.DefaultThreeTierConfig.NumESW, "3-tier/collapsed-core: edge switch count")
	f.Int(flagEndpointsPerESW, topology.DefaultThreeTierConfig.EndpointsPerESW, "3-tier/collapsed-core: endpoints per edge switch")
	f.Int(flagK, topology.DefaultFatTreeConfig.K, "fat-tree: arity k")
	f.Int(flagServersPerESW, topology.DefaultFatTreeConfig.ServersPerESW, "fat-tree: servers per edge switch")
	f.Int(flagNumSpine, topology.DefaultSpineLeafConfig.NumSpine, "spine-leaf: spine switch count")
	f.Int(flagNumLeaf, topology.DefaultSpineLeafConfig.NumLeaf, "spine-leaf: leaf switch count")
	f.Int(flagServersPerLeaf, topology.DefaultSpineLeafConfig.ServersPerLeaf, "spine-leaf: servers per leaf switch")

	return generateCmd
}

func generate() error {
	log, cleanup, err := logger.New(&logger.Config{
		Level:    viper.GetString(flagLogLevel),
		Encoding: viper.GetString(flagLogEncoding),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer cleanup()

	cfg := &ipam.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return errors.Wrap(err, "failed to load allocation config")
	}
	if d := viper.GetString(flagDistribution); d != "" {
		cfg.Distribution = d
	}
	if vlans := viper.GetIntSlice(flagEndpointVLAN); len(vlans) > 0 {
		cfg.EndpointVLANs = vlans
	}
	if viper.GetBool(flagSharedVLANs) {
		cfg.UniqueSwitchVLANs = false
	}

	topologyType := viper.GetString(flagTopology)
	g, err := buildTopology(log, topologyType)
	if err != nil {
		return err
	}

	mgr := ipam.NewManager(log, g, cfg)
	if err := mgr.AssignNetworkAttributes(topologyType); err != nil {
		return err
	}

	if viper.GetBool(flagSummary) {
		if err := printSummary(mgr.Summary()); err != nil {
			return err
		}
	}

	return writeOutput(log, g, viper.GetString(flagOutput))
}

func buildTopology(log *zap.Logger, topologyType string) (*graph.Graph, error) {
	switch topologyType {
	case ipam.TopologyThreeTier:
		cfg := topology.DefaultThreeTierConfig
		cfg.NumASW = viper.GetInt(flagNumASW)
		cfg.NumESW = viper.GetInt(flagNumESW)
		cfg.EndpointsPerESW = viper.GetInt(flagEndpointsPerESW)
		return topology.BuildThreeTier(log, cfg)

	case ipam.TopologyFatTree:
		cfg := topology.DefaultFatTreeConfig
		cfg.K = viper.GetInt(flagK)
		cfg.ServersPerESW = viper.GetInt(flagServersPerESW)
		cfg.SwitchPortCapacity = cfg.K
		return topology.BuildFatTree(log, cfg)

	case ipam.TopologySpineLeaf:
		cfg := topology.DefaultSpineLeafConfig
		cfg.NumSpine = viper.GetInt(flagNumSpine)
		cfg.NumLeaf = viper.GetInt(flagNumLeaf)
		cfg.ServersPerLeaf = viper.GetInt(flagServersPerLeaf)
		return topology.BuildSpineLeaf(log, cfg)

	case ipam.TopologyCollapsedCore:
		cfg := topology.DefaultCollapsedCoreConfig
		cfg.NumESW = viper.GetInt(flagNumESW)
		cfg.EndpointsPerESW = viper.GetInt(flagEndpointsPerESW)
		return topology.BuildCollapsedCore(log, cfg)

	default:
		return nil, errors.Wrapf(ipam.ErrUnsupportedTopology, "%q", topologyType)
	}
}

func printSummary(s ipam.Summary) error {
	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "encoding summary")
	}
	return nil
}

func writeOutput(log *zap.Logger, g *graph.Graph, output string) error {
	if output == "" || output == "-" {
		return export.Write(os.Stdout, g)
	}

	f, err := os.Create(output)
	if err != nil {
		return errors.Wrapf(err, "failed to create output file %s", output)
	}
	defer f.Close()

	if err := export.Write(f, g); err != nil {
		return err
	}
	log.Info("wrote node-link JSON", zap.String("path", output))
	return nil
}
