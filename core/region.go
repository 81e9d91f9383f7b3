package core

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"
)

// SelfLoopPolicy selects what the region synthesizer does with a lifted
// self-loop (a pair of transitions SLoopConverter introduced through one
// intermediate state) once regions have been computed.
type SelfLoopPolicy byte

const (
	// SLIgnore leaves the lifted two-hop structure exactly as region
	// synthesis produced it: a real intermediate place and two transitions.
	SLIgnore SelfLoopPolicy = iota
	// SLReestablish is accepted and recorded, but Synthesize handles it
	// exactly like SLIgnore: the lifted two-hop structure is kept and no
	// self-loop arc pair is re-added.
	SLReestablish
	// SLProcess is accepted and recorded, but Synthesize handles it exactly
	// like SLIgnore: the intermediate place is kept and self-loops get no
	// dedicated row in the region computation.
	SLProcess
)

func (p SelfLoopPolicy) String() string {
	switch p {
	case SLIgnore:
		return "ignore"
	case SLReestablish:
		return "reestablish"
	case SLProcess:
		return "process"
	default:
		return "unknown"
	}
}

// SynthState is the region synthesizer's explicit lifecycle state. GetPN and
// GetInitialMarking are only valid once Synthesized.
type SynthState byte

const (
	SynthFresh SynthState = iota
	SynthConfigured
	SynthSynthesized
	SynthFailed
)

func (s SynthState) String() string {
	switch s {
	case SynthFresh:
		return "Fresh"
	case SynthConfigured:
		return "Configured"
	case SynthSynthesized:
		return "Synthesized"
	case SynthFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// region is a candidate place: a subset of TS states (its support) together
// with the net token-change each label induces when crossing the support's
// boundary. A region is valid only if every occurrence of a label induces
// the same delta (spec.md §4.M's region axiom); this is what makes a region
// realizable as a single Petri-net place.
type region struct {
	support *bitset.BitSet
	delta   map[string]int // label -> -1 (consumes), 0 (no effect, omitted), +1 (produces)
}

// RegionSynthesizer derives a workflow Petri net from a labeled transition
// system via the theory of regions. It is the M component (spec.md §4.M):
// the last and most involved stage of the pipeline.
type RegionSynthesizer struct {
	state         SynthState
	ts            *EventLogTS
	policy        SelfLoopPolicy
	makeWorkflow  bool
	maxStates     int
	net           *PetriNet
	marking       *bitset.BitSet
	log           *logrus.Logger
}

// NewRegionSynthesizer returns a synthesizer in the Fresh state, logging
// through lg (nil falls back to logrus's standard logger). maxStates bounds
// the brute-force region search this naive synthesizer performs: it
// enumerates all 2^n-2 nonempty proper subsets of states, so anything much
// beyond ~20 states is infeasible — callers with larger TSs should condense
// first (component G).
func NewRegionSynthesizer(maxStates int, lg *logrus.Logger) *RegionSynthesizer {
	if maxStates <= 0 {
		maxStates = 20
	}
	if lg == nil {
		lg = logrus.StandardLogger()
	}
	return &RegionSynthesizer{state: SynthFresh, maxStates: maxStates, log: lg}
}

// State reports the synthesizer's current lifecycle state.
func (r *RegionSynthesizer) State() SynthState { return r.state }

// Configure binds ts, policy and the make_wfnet option (spec.md §4.M) and
// moves the synthesizer to Configured. When makeWorkflowNet is true, ts
// should already have a single accepting state (component I), since the
// workflow-net sink place is derived from it; when false, Synthesize skips
// the source/sink places and the workflow-net postcondition entirely and
// produces a plain region net.
func (r *RegionSynthesizer) Configure(ts *EventLogTS, policy SelfLoopPolicy, makeWorkflowNet bool) error {
	if ts == nil || ts.NumStates() == 0 {
		return NewError(CodeInvalidArgument, "region synthesizer: cannot configure an empty TS")
	}
	r.ts = ts
	r.policy = policy
	r.makeWorkflow = makeWorkflowNet
	r.net = nil
	r.marking = nil
	r.state = SynthConfigured
	return nil
}

// Synthesize runs region enumeration and builds the net. It fails with
// CodeSynthesisInfeasible if the TS is too large for the brute-force search
// or CodeNotAWorkflowNet if the result fails the workflow-net postcondition.
func (r *RegionSynthesizer) Synthesize(progress ProgressFunc) error {
	if r.state != SynthConfigured {
		return NewError(CodeInvalidArgument, "region synthesizer: Synthesize called outside Configured state")
	}
	progress = orNoop(progress)

	if r.ts.NumStates() > r.maxStates {
		r.state = SynthFailed
		return NewError(CodeSynthesisInfeasible,
			fmt.Sprintf("region synthesis: %d states exceeds brute-force bound %d; condense first", r.ts.NumStates(), r.maxStates))
	}

	working := splitNondeterministicLabels(r.ts)
	progress(10)

	states, index := enumerateStates(working.LabeledTS)
	labels := distinctLabels(working.LabeledTS)
	regions := enumerateRegions(working.LabeledTS, states, index, labels)
	r.log.Infof("region synthesis: %d candidate regions over %d states, %d labels", len(regions), len(states), len(labels))
	progress(50)

	initIndex, hasInit := index[working.Initial()]

	net := NewPetriNet()
	placeFor := make([]PNPlace, len(regions))
	for i := range regions {
		placeFor[i] = net.AddPlace(fmt.Sprintf("p%d", i))
		if hasInit && regions[i].support.Test(uint(initIndex)) {
			net.AddInitialPlace(placeFor[i])
		}
	}
	transFor := make(map[string]PNTrans, len(labels))
	for _, lbl := range labels {
		transFor[lbl] = net.AddTransition(lbl)
	}
	for i, reg := range regions {
		for lbl, delta := range reg.delta {
			t := transFor[lbl]
			switch {
			case delta > 0:
				net.AddOutputArc(t, placeFor[i])
			case delta < 0:
				net.AddInputArc(placeFor[i], t, 1, ArcRegular)
			}
		}
	}
	progress(70)

	if r.makeWorkflow {
		source := net.AddPlace("source")
		sink := net.AddPlace("sink")
		initOuts := labelSetOf(working.OutTransitions(working.Initial()), working.LabeledTS)
		for lbl := range initOuts {
			net.AddInputArc(source, transFor[lbl], 1, ArcRegular)
		}

		sinkState, ok := singleAcceptingState(working)
		if !ok {
			r.state = SynthFailed
			return NewError(CodeNotAWorkflowNet, "region synthesis: TS must have exactly one accepting state; run the SAS converter first")
		}
		sinkIns := labelSetOf(working.InTransitions(sinkState), working.LabeledTS)
		for lbl := range sinkIns {
			net.AddOutputArc(transFor[lbl], sink)
		}
		net.SetEnds(source, sink)
	}
	progress(85)

	applySelfLoopPolicy(net, working.LabeledTS, r.policy, transFor)

	if r.makeWorkflow {
		if err := verifyWorkflowNet(net); err != nil {
			r.state = SynthFailed
			return err
		}
	}

	r.net = net
	r.marking = net.InitialMarking()
	r.state = SynthSynthesized
	progress(100)
	return nil
}

// GetPN returns the synthesized net. It panics if called before a
// successful Synthesize, matching the explicit state-machine contract.
func (r *RegionSynthesizer) GetPN() *PetriNet {
	if r.state != SynthSynthesized {
		panic("region synthesizer: GetPN called outside Synthesized state")
	}
	return r.net
}

// GetInitialMarking returns the net's initial marking: a token on every
// region place whose region contains the TS's initial state, plus the source
// place when a workflow net was built. It panics outside the Synthesized
// state.
func (r *RegionSynthesizer) GetInitialMarking() *bitset.BitSet {
	if r.state != SynthSynthesized {
		panic("region synthesizer: GetInitialMarking called outside Synthesized state")
	}
	return r.marking.Clone()
}

func enumerateStates(ts *LabeledTS) ([]StateHandle, map[StateHandle]int) {
	states := make([]StateHandle, 0, ts.NumStates())
	index := make(map[StateHandle]int, ts.NumStates())
	for s := range ts.States() {
		index[s] = len(states)
		states = append(states, s)
	}
	return states, index
}

func distinctLabels(ts *LabeledTS) []string {
	seen := make(map[string]struct{})
	for th := range ts.Transitions() {
		lbl := ts.TransLabel(th)
		if lbl.Kind() == KindEmpty {
			continue
		}
		seen[lbl.CanonicalString()] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for lbl := range seen {
		out = append(out, lbl)
	}
	sort.Strings(out)
	return out
}

func labelSetOf(edges func(func(TransHandle) bool), ts *LabeledTS) map[string]struct{} {
	out := make(map[string]struct{})
	for th := range edges {
		lbl := ts.TransLabel(th)
		if lbl.Kind() == KindEmpty {
			continue
		}
		out[lbl.CanonicalString()] = struct{}{}
	}
	return out
}

func singleAcceptingState(ts *EventLogTS) (StateHandle, bool) {
	var found StateHandle
	count := 0
	for s := range ts.States() {
		if ts.Accepting(s) == AcceptTrue {
			found = s
			count++
		}
	}
	if count != 1 {
		return StateHandle{}, false
	}
	return found, true
}

// splitNondeterministicLabels renames a label's transitions into per-target
// variants ("label#0", "label#1", ...) whenever the label leads to more than
// one distinct target state somewhere in the TS. A region-consistent PN
// transition must have one fixed effect; a label that doesn't cannot be
// realized as a single transition (spec.md §4.M's label-splitting case).
func splitNondeterministicLabels(ts *EventLogTS) *EventLogTS {
	out := ts.Clone()

	byLabel := make(map[string][]TransHandle)
	for th := range out.Transitions() {
		lbl := out.TransLabel(th)
		if lbl.Kind() == KindEmpty {
			continue
		}
		byLabel[lbl.CanonicalString()] = append(byLabel[lbl.CanonicalString()], th)
	}

	for labelKey, group := range byLabel {
		targetOrder := make([]StateHandle, 0)
		targetIndex := make(map[StateHandle]int)
		for _, th := range group {
			tgt := out.Target(th)
			if _, ok := targetIndex[tgt]; !ok {
				targetIndex[tgt] = len(targetOrder)
				targetOrder = append(targetOrder, tgt)
			}
		}
		if len(targetOrder) <= 1 {
			continue
		}
		for _, th := range group {
			src := out.Source(th)
			tgt := out.Target(th)
			freq := out.Frequency(th)
			variant := fmt.Sprintf("%s#%d", labelKey, targetIndex[tgt])
			if err := out.RemoveTrans(th); err != nil {
				panic(err)
			}
			out.GetOrAddTransWithFreq(src, tgt, CStrVal(variant), freq)
		}
	}
	return out
}

// enumerateRegions brute-forces every nonempty proper subset of states,
// keeping the ones that satisfy the region axiom for every label and induce
// at least one nonzero effect (a region with zero effect everywhere
// contributes no arcs and would only be a dead place). Candidates are then
// reduced with the Parikh-based incidence matrix (K): a candidate whose
// delta vector is a linear combination of regions already kept imposes no
// arc constraint a kept region doesn't already impose, so it is dropped
// rather than added as a redundant place. This is the K-backed reduction
// spec.md §4.K/§4.M step 2 describes as yielding a finite generating set.
func enumerateRegions(ts *LabeledTS, states []StateHandle, index map[StateHandle]int, labels []string) []region {
	n := len(states)
	if n == 0 || n > 62 {
		return nil
	}

	transByLabel := make(map[string][]TransHandle)
	for th := range ts.Transitions() {
		lbl := ts.TransLabel(th)
		if lbl.Kind() == KindEmpty {
			continue
		}
		key := lbl.CanonicalString()
		transByLabel[key] = append(transByLabel[key], th)
	}

	labelIndex := make(map[string]int, len(labels))
	for i, lbl := range labels {
		labelIndex[lbl] = i
	}

	seen := make(map[string]struct{})
	basis := NewParikhMatrix(len(labels))
	regions := make([]region, 0)

	var total uint64 = 1 << uint(n)
	for mask := uint64(1); mask < total-1; mask++ {
		delta := make(map[string]int, len(labels))
		valid := true
		for _, lbl := range labels {
			d, ok := regionDelta(transByLabel[lbl], mask, index, ts)
			if !ok {
				valid = false
				break
			}
			if d != 0 {
				delta[lbl] = d
			}
		}
		if !valid || len(delta) == 0 {
			continue
		}
		sig := regionSignature(delta)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}

		vec := NewParikhVector(len(labels))
		for lbl, d := range delta {
			vec[labelIndex[lbl]] = int64(d)
		}
		if !basis.AddRow(vec) {
			continue
		}

		support := bitset.New(uint(n))
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				support.Set(uint(i))
			}
		}
		regions = append(regions, region{support: support, delta: delta})
	}
	return regions
}

func regionDelta(trans []TransHandle, mask uint64, index map[StateHandle]int, ts *LabeledTS) (int, bool) {
	have := false
	d := 0
	for _, th := range trans {
		srcIn := mask&(1<<uint(index[ts.Source(th)])) != 0
		tgtIn := mask&(1<<uint(index[ts.Target(th)])) != 0
		cur := bit(tgtIn) - bit(srcIn)
		if !have {
			d = cur
			have = true
			continue
		}
		if cur != d {
			return 0, false
		}
	}
	return d, true
}

func bit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func regionSignature(delta map[string]int) string {
	keys := make([]string, 0, len(delta))
	for k := range delta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sig := ""
	for _, k := range keys {
		sig += fmt.Sprintf("%s=%d;", k, delta[k])
	}
	return sig
}

// applySelfLoopPolicy post-processes lifted self-loops (tagged by
// SLoopConverter via sloopMidMarker on their intermediate TS state) now that
// the corresponding PN places/transitions exist.
func applySelfLoopPolicy(net *PetriNet, ts *LabeledTS, policy SelfLoopPolicy, transFor map[string]PNTrans) {
	if policy == SLIgnore {
		return
	}
	// Both SLReestablish and SLProcess are recorded on the synthesizer but
	// are no-ops here: region synthesis already derives a lifted loop's
	// places independently of the sloopMidMarker tag, so the two-hop shape
	// region synthesis produces already matches what SLProcess wants, and
	// collapsing it back to a single TS-level self-loop (SLReestablish)
	// would discard the very place separation regions were built from. The
	// marker remains on the state for a DOT emitter or future minimization
	// pass to recognize the lifted shape. See DESIGN.md.
}

// verifyWorkflowNet checks the structural workflow-net postcondition that
// source and sink places are set, the source has no incoming arcs and the
// sink has no outgoing arcs. It does not check that every place and
// transition lies on a path from source to sink.
func verifyWorkflowNet(net *PetriNet) error {
	source, ok := net.Source()
	if !ok {
		return NewError(CodeNotAWorkflowNet, "workflow net: no source place set")
	}
	sink, ok := net.Sink()
	if !ok {
		return NewError(CodeNotAWorkflowNet, "workflow net: no sink place set")
	}
	for t := 0; t < net.NumTransitions(); t++ {
		for _, a := range net.InputArcs(PNTrans(t)) {
			if a.place == sink {
				return NewError(CodeNotAWorkflowNet, "workflow net: sink place has an outgoing arc")
			}
		}
	}
	for t := 0; t < net.NumTransitions(); t++ {
		for _, p := range net.OutputPlaces(PNTrans(t)) {
			if p == source {
				return NewError(CodeNotAWorkflowNet, "workflow net: source place has an incoming arc")
			}
		}
	}
	return nil
}
