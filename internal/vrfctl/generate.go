package vrfctl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"sync"

	"github.com/apparentlymart/go-cidr/cidr"
	"golang.org/x/sync/errgroup"
)

// GenerateOptions controls the sample data generator.
type GenerateOptions struct {
	NumVRFs     int
	Namespace   string
	Imports     int
	Exports     int
	Prefixes    int
	Concurrency int
	// Seed makes the run reproducible when non-zero.
	Seed uint64
}

// GenerateSummary counts what a run created.
type GenerateSummary struct {
	VRFs         int
	RouteTargets int
	Prefixes     int
	Warnings     int
}

// privateBlock is an RFC 1918 range and the prefix lengths drawn from it.
type privateBlock struct {
	network *net.IPNet
	lengths []int
}

var privateBlocks = []privateBlock{
	{mustCIDR("10.0.0.0/8"), []int{16, 20, 24}},
	{mustCIDR("172.16.0.0/12"), []int{16, 20, 24}},
	{mustCIDR("192.168.0.0/16"), []int{24}},
}

func mustCIDR(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Generator creates random VRFs with route targets and prefixes through
// the REST API.
type Generator struct {
	client *Client
	out    io.Writer

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator(client *Client, out io.Writer, seed uint64) *Generator {
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(seed, seed)
	}
	return &Generator{client: client, out: out, rnd: rand.New(src)}
}

// RD returns ASN:NN with a private ASN (65000-65535) and NN in 1-65535.
func (g *Generator) RD() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fmt.Sprintf("%d:%d", 65000+g.rnd.IntN(536), 1+g.rnd.IntN(65535))
}

// RT has the same shape as RD.
func (g *Generator) RT() string {
	return g.RD()
}

// CIDR carves a random aligned subnet out of one of the private blocks.
func (g *Generator) CIDR() string {
	g.mu.Lock()
	block := privateBlocks[g.rnd.IntN(len(privateBlocks))]
	length := block.lengths[g.rnd.IntN(len(block.lengths))]
	ones, _ := block.network.Mask.Size()
	newBits := length - ones
	num := g.rnd.IntN(1 << newBits)
	g.mu.Unlock()

	subnet, err := cidr.Subnet(block.network, newBits, num)
	if err != nil {
		// Unreachable: num is always within the block.
		panic(err)
	}
	return subnet.String()
}

// Run health-checks the API and then creates opts.NumVRFs VRFs named
// vrf-001, vrf-002, ... with up to opts.Concurrency VRFs in flight.
// Conflicts and missing VRFs are reported as warnings and do not stop
// the run; transport errors do.
func (g *Generator) Run(ctx context.Context, opts GenerateOptions) (GenerateSummary, error) {
	fmt.Fprintf(g.out, "Generating %d VRFs in namespace '%s'...\n", opts.NumVRFs, opts.Namespace)
	fmt.Fprintf(g.out, "  - %d import RTs per VRF\n", opts.Imports)
	fmt.Fprintf(g.out, "  - %d export RTs per VRF\n", opts.Exports)
	fmt.Fprintf(g.out, "  - %d prefixes per VRF\n\n", opts.Prefixes)

	if err := g.client.Health(ctx); err != nil {
		return GenerateSummary{}, fmt.Errorf("API is not accessible at %s: %w", g.client.BaseURL, err)
	}

	var (
		summary GenerateSummary
		sumMu   sync.Mutex
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(opts.Concurrency, 1))

	for i := 1; i <= opts.NumVRFs; i++ {
		name := fmt.Sprintf("vrf-%03d", i)
		eg.Go(func() error {
			var buf bytes.Buffer
			s, err := g.generateVRF(ctx, &buf, opts, name)

			sumMu.Lock()
			summary.VRFs += s.VRFs
			summary.RouteTargets += s.RouteTargets
			summary.Prefixes += s.Prefixes
			summary.Warnings += s.Warnings
			buf.WriteString("\n")
			g.out.Write(buf.Bytes())
			sumMu.Unlock()

			return err
		})
	}

	if err := eg.Wait(); err != nil {
		return summary, err
	}

	fmt.Fprintf(g.out, "Successfully created %d VRFs\n", summary.VRFs)
	return summary, nil
}

func (g *Generator) generateVRF(ctx context.Context, out io.Writer, opts GenerateOptions, name string) (GenerateSummary, error) {
	var s GenerateSummary
	ns := opts.Namespace
	rd := g.RD()

	fmt.Fprintf(out, "Creating VRF: %s/%s (RD: %s)\n", ns, name, rd)
	if _, err := g.client.CreateVRF(ctx, name, ns, rd); err != nil {
		if StatusOf(err) == 400 {
			fmt.Fprintf(out, "  Warning: VRF '%s' in namespace '%s' already exists or RD '%s' is in use\n", name, ns, rd)
			s.Warnings++
			return s, nil
		}
		return s, fmt.Errorf("create vrf %s/%s: %w", ns, name, err)
	}
	s.VRFs++

	for _, dir := range []struct {
		name  string
		count int
	}{{"import", opts.Imports}, {"export", opts.Exports}} {
		for range dir.count {
			rt := g.RT()
			if err := g.client.AddRouteTarget(ctx, ns, name, dir.name, rt); err != nil {
				if StatusOf(err) == 0 {
					return s, err
				}
				fmt.Fprintf(out, "  Warning: adding %s RT '%s': %v\n", dir.name, rt, err)
				s.Warnings++
				continue
			}
			s.RouteTargets++
			fmt.Fprintf(out, "  Added %s RT: %s\n", dir.name, rt)
		}
	}

	for range opts.Prefixes {
		prefix := g.CIDR()
		if err := g.client.AddPrefix(ctx, ns, name, prefix); err != nil {
			switch StatusOf(err) {
			case 0:
				return s, err
			case 400:
				fmt.Fprintf(out, "  Warning: Prefix '%s' already exists in VRF '%s'\n", prefix, name)
			default:
				fmt.Fprintf(out, "  Warning: adding prefix '%s': %v\n", prefix, err)
			}
			s.Warnings++
			continue
		}
		s.Prefixes++
		fmt.Fprintf(out, "  Added prefix: %s\n", prefix)
	}

	return s, nil
}
