package commands

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vsinha/cockpit/pkg/domain/entities"
	"github.com/vsinha/cockpit/pkg/domain/repositories"
	csvsource "github.com/vsinha/cockpit/pkg/infrastructure/repositories/csv"
)

// generateOptions configures synthetic scenario generation
type generateOptions struct {
	products  int   // number of products, each with its own BOM
	items     int   // materials per product, alternates excluded
	maxDepth  int   // deepest bom_level
	seed      int64 // 0 picks a time-based seed
	today     string
	outputDir string
	encoding  string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic CSV scenario",
		Long: "Generate builds random multi-level BOMs with shared parts and alternates,\n" +
			"a material master, purchase requests and orders for bought parts, MRP\n" +
			"net demand rows and dated stock lots, and writes them as a CSV scenario\n" +
			"directory.",
		Example: "  cockpit generate --products 3 --items 200 --depth 6 --seed 42 --output ./scenarios/large",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.products, "products", 3, "number of products")
	f.IntVar(&opts.items, "items", 50, "materials per product")
	f.IntVar(&opts.maxDepth, "depth", 5, "maximum BOM depth")
	f.Int64Var(&opts.seed, "seed", 0, "random seed for reproducible output (0 = time based)")
	f.StringVar(&opts.today, "today", "", "reference date for purchase documents YYYY-MM-DD (default today)")
	f.StringVarP(&opts.outputDir, "output", "o", "", "scenario directory to write (required)")
	f.StringVar(&opts.encoding, "encoding", string(csvsource.UTF8), "file encoding: utf8 or gbk")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.products < 1 || opts.items < 1 || opts.maxDepth < 1 {
		return errors.New("products, items and depth must be positive")
	}
	encoding, err := csvsource.ParseEncoding(opts.encoding)
	if err != nil {
		return err
	}

	today := entities.DateOf(time.Now())
	if opts.today != "" {
		if today, err = entities.ParseDate(opts.today); err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
	}

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gen := newScenarioGenerator(*opts, seed, today)
	snapshot := gen.generate()

	if err := csvsource.NewWriter(encoding).WriteScenario(opts.outputDir, snapshot); err != nil {
		return err
	}

	bomEdges := 0
	for _, edges := range snapshot.BOM {
		bomEdges += len(edges)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scenario written to %s (seed %d): %d products, %d BOM edges, %d materials, %d PRs, %d POs, %d stock lines\n",
		opts.outputDir, seed, len(snapshot.BOM), bomEdges, len(snapshot.Materials),
		len(snapshot.PurchaseRequests), len(snapshot.PurchaseOrders), len(snapshot.Inventory))
	return nil
}

// bomNode is one material in a generated product structure
type bomNode struct {
	code      entities.MaterialCode
	name      string
	level     int
	quantity  int64 // usage per parent
	alternate *bomNode
	children  []*bomNode
	parents   []*bomNode
}

func (n *bomNode) hasChild(c *bomNode) bool {
	for _, existing := range n.children {
		if existing == c {
			return true
		}
	}
	return false
}

type scenarioGenerator struct {
	opts  generateOptions
	rand  *rand.Rand
	today entities.Date
	docs  int
}

func newScenarioGenerator(opts generateOptions, seed int64, today entities.Date) *scenarioGenerator {
	return &scenarioGenerator{
		opts:  opts,
		rand:  rand.New(rand.NewSource(seed)),
		today: today,
	}
}

// generate builds every product and the supply data around it
func (g *scenarioGenerator) generate() *repositories.Snapshot {
	snapshot := repositories.NewSnapshot()

	for p := 1; p <= g.opts.products; p++ {
		root, nodes := g.generateTree(p)
		snapshot.BOM[root.code] = bomEdges(nodes)

		snapshot.Materials = append(snapshot.Materials, entities.MaterialRecord{
			Code:                 root.code,
			Name:                 root.name,
			Attr:                 "自制",
			ProductFixedLeadTime: decimal.NewFromInt(int64(1 + g.rand.Intn(5))),
		})

		for _, n := range nodes[1:] {
			for _, m := range []*bomNode{n, n.alternate} {
				if m == nil {
					continue
				}
				record := g.material(m, len(n.children) == 0)
				snapshot.Materials = append(snapshot.Materials, record)
				if record.Type().IsExternal() {
					g.procurement(snapshot, m.code)
				}
				g.inventory(snapshot, m.code)
			}
			if demand, ok := g.demand(n.code); ok {
				snapshot.MRP[root.code] = append(snapshot.MRP[root.code], demand)
			}
		}
	}

	return snapshot
}

// generateTree grows one product level by level. Nodes are returned in
// creation order with the root first.
func (g *scenarioGenerator) generateTree(product int) (*bomNode, []*bomNode) {
	root := &bomNode{
		code: entities.MaterialCode(fmt.Sprintf("P%03d", product)),
		name: fmt.Sprintf("Product %03d Complete Assembly", product),
	}
	nodes := []*bomNode{root}
	created := 0

	currentLevel := []*bomNode{root}
	level := 0

	for level < g.opts.maxDepth && created < g.opts.items {
		level++
		var nextLevel []*bomNode

		for _, parent := range currentLevel {
			// Each parent gets 2-8 children
			numChildren := 2 + g.rand.Intn(7)

			for c := 0; c < numChildren && created < g.opts.items; c++ {
				// 20% chance to reuse an existing part below the root
				var child *bomNode
				if level > 1 && g.rand.Float64() < 0.2 {
					candidates := g.findShareableParts(nodes, level, parent)
					if len(candidates) > 0 {
						child = candidates[g.rand.Intn(len(candidates))]
					}
				}

				if child == nil {
					created++
					child = &bomNode{
						code:     entities.MaterialCode(fmt.Sprintf("P%03d-L%d-%04d", product, level, created)),
						name:     g.describe(level),
						level:    level,
						quantity: int64(1 + g.rand.Intn(10)),
					}
					nodes = append(nodes, child)
					nextLevel = append(nextLevel, child)
				}

				parent.children = append(parent.children, child)
				child.parents = append(child.parents, parent)
			}
		}

		if len(nextLevel) == 0 {
			break
		}
		currentLevel = nextLevel
	}

	// 10% of leaf parts get a substitute
	for _, n := range nodes[1:] {
		if len(n.children) == 0 && g.rand.Float64() < 0.1 {
			n.alternate = &bomNode{
				code:     n.code + "-ALT",
				name:     n.name + " (alternate)",
				level:    n.level,
				quantity: n.quantity,
			}
		}
	}

	return root, nodes
}

// findShareableParts returns parts parent may also use without creating a cycle
func (g *scenarioGenerator) findShareableParts(nodes []*bomNode, level int, parent *bomNode) []*bomNode {
	var candidates []*bomNode
	for _, n := range nodes[1:] {
		if n.level < level-1 || len(n.parents) >= 3 {
			continue
		}
		if n == parent || parent.hasChild(n) || isAncestor(n, parent, make(map[*bomNode]bool)) {
			continue
		}
		candidates = append(candidates, n)
	}
	return candidates
}

// isAncestor reports whether candidate is above node
func isAncestor(candidate, node *bomNode, visited map[*bomNode]bool) bool {
	if visited[node] {
		return false
	}
	visited[node] = true

	for _, parent := range node.parents {
		if parent == candidate || isAncestor(candidate, parent, visited) {
			return true
		}
	}
	return false
}

func (g *scenarioGenerator) describe(level int) string {
	if level <= 2 {
		return "Subassembly"
	}
	kinds := []string{"Component", "Module", "Unit", "Bracket", "Block", "Element"}
	return kinds[g.rand.Intn(len(kinds))]
}

// bomEdges emits one edge per parent-child pair. Children of the root have
// no parent code. A part with a substitute shares an alternative group with
// it, numbered per parent.
func bomEdges(nodes []*bomNode) []entities.BOMEdge {
	root := nodes[0]
	var edges []entities.BOMEdge
	for _, parent := range nodes {
		parentCode := parent.code
		if parent == root {
			parentCode = ""
		}
		groups := 0
		for _, child := range parent.children {
			edge := entities.BOMEdge{
				MaterialCode: child.code,
				MaterialName: child.name,
				ParentCode:   parentCode,
				BOMLevel:     child.level,
				Quantity:     decimal.NewFromInt(child.quantity),
				AltPriority:  entities.DefaultAltPriority,
				Version:      "V1",
			}
			if child.alternate == nil {
				edges = append(edges, edge)
				continue
			}
			groups++
			edge.AltGroupNo = fmt.Sprintf("G%d", groups)
			edges = append(edges, edge, entities.BOMEdge{
				MaterialCode: child.alternate.code,
				MaterialName: child.alternate.name,
				ParentCode:   parentCode,
				BOMLevel:     child.level,
				Quantity:     decimal.NewFromInt(child.alternate.quantity),
				AltPart:      "1",
				AltGroupNo:   edge.AltGroupNo,
				AltPriority:  1,
				Version:      "V1",
			})
		}
	}
	return edges
}

// material picks a sourcing attribute and lead time. Leaves are mostly bought,
// assemblies mostly made in house; about one in twenty has no lead time.
func (g *scenarioGenerator) material(n *bomNode, leaf bool) entities.MaterialRecord {
	record := entities.MaterialRecord{Code: n.code, Name: n.name, Attr: "自制", Unit: entities.DefaultUnit}

	roll := g.rand.Float64()
	switch {
	case leaf && roll < 0.8:
		record.Attr = entities.AttrPurchased
	case leaf || roll < 0.2:
		record.Attr = entities.AttrOutsourced
	}

	if g.rand.Float64() < 0.05 {
		return record
	}
	if record.Type().IsExternal() {
		record.MinOrderQty = decimal.NewFromInt(int64(10 * (1 + g.rand.Intn(10))))
		record.PurchaseFixedLeadTime = decimal.NewFromInt(int64(3 + g.rand.Intn(43)))
	} else {
		record.ProductFixedLeadTime = decimal.NewFromInt(int64(1 + g.rand.Intn(10)))
	}
	return record
}

// procurement adds a purchase request to most bought parts and converts some
// of those to orders with a promised delivery date
func (g *scenarioGenerator) procurement(snapshot *repositories.Snapshot, code entities.MaterialCode) {
	if g.rand.Float64() >= 0.6 {
		return
	}
	g.docs++
	prTime := g.today.AddDays(-(1 + g.rand.Intn(30))).Time().Add(time.Duration(8+g.rand.Intn(10)) * time.Hour)
	snapshot.PurchaseRequests = append(snapshot.PurchaseRequests, entities.PurchaseRequest{
		MaterialNumber: code,
		BillNo:         fmt.Sprintf("PR-%06d", g.docs),
		BizTime:        prTime,
	})

	if g.rand.Float64() >= 0.6 {
		return
	}
	snapshot.PurchaseOrders = append(snapshot.PurchaseOrders, entities.PurchaseOrder{
		MaterialNumber: code,
		BillNo:         fmt.Sprintf("PO-%06d", g.docs),
		BizTime:        prTime.Add(time.Duration(1+g.rand.Intn(72)) * time.Hour),
		DeliverDate:    g.today.AddDays(g.rand.Intn(60)).String(),
	})
}

// demand gives a quarter of the parts a shortage and another quarter a surplus
func (g *scenarioGenerator) demand(code entities.MaterialCode) (entities.MRPDemand, bool) {
	roll := g.rand.Float64()
	switch {
	case roll < 0.25:
		return entities.MRPDemand{MainMaterial: code, DemandQuantity: decimal.NewFromInt(-int64(1 + g.rand.Intn(200)))}, true
	case roll < 0.5:
		return entities.MRPDemand{MainMaterial: code, DemandQuantity: decimal.NewFromInt(int64(1 + g.rand.Intn(100)))}, true
	default:
		return entities.MRPDemand{}, false
	}
}

var warehouses = []string{"WH-MAIN", "WH-RAW", "WH-LINE"}

// inventory gives most parts one to three stock lots. Batch numbers start
// with the receipt date so the lots age over up to five months; some lots
// are fully reserved.
func (g *scenarioGenerator) inventory(snapshot *repositories.Snapshot, code entities.MaterialCode) {
	if g.rand.Float64() >= 0.7 {
		return
	}
	price := decimal.NewFromInt(int64(1 + g.rand.Intn(5000))).Shift(-2)
	lots := 1 + g.rand.Intn(3)
	for i := 1; i <= lots; i++ {
		received := g.today.AddDays(-g.rand.Intn(151))
		base := int64(1 + g.rand.Intn(500))
		available := int64(0)
		if g.rand.Float64() >= 0.15 {
			available = 1 + g.rand.Int63n(base)
		}
		snapshot.Inventory = append(snapshot.Inventory, entities.InventoryRecord{
			MaterialCode: code,
			Warehouse:    warehouses[g.rand.Intn(len(warehouses))],
			BatchNo:      fmt.Sprintf("%s-%02d", received.Time().Format("20060102"), i),
			AvailableQty: decimal.NewFromInt(available),
			BaseQty:      decimal.NewFromInt(base),
			UnitPrice:    price,
		})
	}
}
