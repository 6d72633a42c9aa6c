package vrfctl

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadSeedConfig reads a seed definition from a YAML file.
func LoadSeedConfig(path string) (*SeedConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg SeedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for i, v := range cfg.VRFs {
		if v.Name == "" || v.RD == "" {
			return nil, fmt.Errorf("vrfs[%d]: name and rd are required", i)
		}
		if v.Namespace == "" {
			cfg.VRFs[i].Namespace = "default"
		}
	}
	return &cfg, nil
}

// Seed applies the definition. A VRF that already exists (400) is reused;
// route target and prefix adds that the API rejects as duplicates are
// skipped, so running the same file twice converges.
func Seed(ctx context.Context, client *Client, cfg *SeedConfig, out io.Writer) error {
	for _, v := range cfg.VRFs {
		if _, err := client.CreateVRF(ctx, v.Name, v.Namespace, v.RD); err != nil {
			if StatusOf(err) != 400 {
				return fmt.Errorf("create vrf %s/%s: %w", v.Namespace, v.Name, err)
			}
			fmt.Fprintf(out, "VRF %s/%s: exists (%v)\n", v.Namespace, v.Name, err)
		} else {
			fmt.Fprintf(out, "VRF %s/%s: created (RD %s)\n", v.Namespace, v.Name, v.RD)
		}

		for _, rt := range v.Imports {
			if err := client.AddRouteTarget(ctx, v.Namespace, v.Name, "import", rt); err != nil {
				return fmt.Errorf("vrf %s/%s import %s: %w", v.Namespace, v.Name, rt, err)
			}
			fmt.Fprintf(out, "  import RT %s\n", rt)
		}
		for _, rt := range v.Exports {
			if err := client.AddRouteTarget(ctx, v.Namespace, v.Name, "export", rt); err != nil {
				return fmt.Errorf("vrf %s/%s export %s: %w", v.Namespace, v.Name, rt, err)
			}
			fmt.Fprintf(out, "  export RT %s\n", rt)
		}
		for _, p := range v.Prefixes {
			if err := client.AddPrefix(ctx, v.Namespace, v.Name, p); err != nil {
				if StatusOf(err) == 400 {
					fmt.Fprintf(out, "  prefix %s: exists\n", p)
					continue
				}
				return fmt.Errorf("vrf %s/%s prefix %s: %w", v.Namespace, v.Name, p, err)
			}
			fmt.Fprintf(out, "  prefix %s\n", p)
		}
	}
	return nil
}
