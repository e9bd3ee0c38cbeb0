package flex

import "github.com/go-drift/litho/pkg/graphics"

// flexItem holds intermediate calculation state for a child.
type flexItem struct {
	node        *Node
	base        int
	main        int
	cross       int
	mainMargin  int
	crossMargin int
	mainPos     int
	crossPos    int
	stretch     bool
}

// calculate returns the border-box size of n under the given specs. With
// layout set, children are positioned and every node in the subtree stores
// its final geometry.
func (n *Node) calculate(ws, hs SizeSpec, ownerW, ownerH int, layout bool) (int, int) {
	ws, minW, maxW := constrain(ws, n.Style.Width, n.Style.MinWidth, n.Style.MaxWidth, ownerW)
	hs, minH, maxH := constrain(hs, n.Style.Height, n.Style.MinHeight, n.Style.MaxHeight, ownerH)

	key := measureKey{w: ws, h: hs, ownerW: ownerW, ownerH: ownerH}
	cacheable := !layout || len(n.children) == 0
	if cacheable {
		if r, ok := n.cache[key]; ok {
			return r.w, r.h
		}
	}

	inner := n.Style.inner()
	var w, h int
	switch {
	case len(n.children) == 0 && n.measure != nil:
		mw, mh := n.measure(ws.Shrink(inner.Horizontal()), hs.Shrink(inner.Vertical()))
		w = ws.Resolve(mw + inner.Horizontal())
		h = hs.Resolve(mh + inner.Vertical())
	case len(n.children) == 0:
		w = ws.Resolve(inner.Horizontal())
		h = hs.Resolve(inner.Vertical())
	default:
		w, h = n.layoutChildren(ws, hs, layout)
	}
	w = clamp(w, minW, maxW)
	h = clamp(h, minH, maxH)

	if cacheable {
		if n.cache == nil {
			n.cache = make(map[measureKey]measureResult)
		}
		n.cache[key] = measureResult{w: w, h: h}
	}
	return w, h
}

// constrain folds a node's own dimension and min/max styles into the size spec
// handed down by its parent. It returns the narrowed spec plus the min and
// max bounds to clamp the result with (max < 0 means unbounded).
func constrain(spec SizeSpec, size, minV, maxV Value, owner int) (SizeSpec, int, int) {
	if v, ok := size.Resolve(owner); ok {
		spec = ExactSpec(v)
	}
	lo, _ := minV.Resolve(owner)
	hi := -1
	if v, ok := maxV.Resolve(owner); ok {
		hi = v
		switch spec.Mode {
		case Unspecified:
			spec = AtMostSpec(v)
		case AtMost:
			spec = AtMostSpec(min(spec.Size, v))
		case Exactly:
			spec = ExactSpec(min(spec.Size, v))
		}
	}
	if spec.Mode == Exactly && spec.Size < lo {
		spec = ExactSpec(lo)
	}
	return spec, lo, hi
}

// clamp restricts v to the range [lo, hi]. A negative hi means no upper
// bound. If lo > hi, lo wins (matches CSS behavior).
func clamp(v, lo, hi int) int {
	if hi >= 0 && v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return max(0, v)
}

// layoutChildren runs the flex algorithm over n's children and returns n's
// border-box size.
func (n *Node) layoutChildren(ws, hs SizeSpec, layout bool) (int, int) {
	style := n.Style
	inner := style.inner()
	isRow := style.Direction.IsRow()

	innerW := ws.Shrink(inner.Horizontal())
	innerH := hs.Shrink(inner.Vertical())
	mainSpec, crossSpec := innerH, innerW
	if isRow {
		mainSpec, crossSpec = innerW, innerH
	}
	ownerW, ownerH := innerW.Owner(), innerH.Owner()

	// Phase 1: base sizes of in-flow children.
	items := make([]flexItem, 0, len(n.children))
	var absolute []*Node
	for _, child := range n.children {
		if child.Style.PositionType == PositionAbsolute {
			absolute = append(absolute, child)
			continue
		}
		item := flexItem{node: child}
		if isRow {
			item.mainMargin = child.Style.Margin.Horizontal()
			item.crossMargin = child.Style.Margin.Vertical()
		} else {
			item.mainMargin = child.Style.Margin.Vertical()
			item.crossMargin = child.Style.Margin.Horizontal()
		}
		align := style.alignFor(child.Style)
		crossDim := child.Style.Width
		if isRow {
			crossDim = child.Style.Height
		}
		item.stretch = align == AlignStretch && !crossDim.IsDefined()

		if v, ok := child.Style.FlexBasis.Resolve(mainSpec.Owner()); ok {
			item.base = v
		} else {
			childMain := UnspecifiedSpec()
			if mainSpec.Mode != Unspecified {
				childMain = AtMostSpec(mainSpec.Size - item.mainMargin)
			}
			childCross := crossChildSpec(crossSpec, item)
			item.base = n.measureChild(child, isRow, childMain, childCross, ownerW, ownerH, true)
		}
		items = append(items, item)
	}

	// Phase 2: grow or shrink into the available main space.
	used := 0
	totalGrow, totalShrink := 0.0, 0.0
	for i := range items {
		used += items[i].base + items[i].mainMargin
		totalGrow += items[i].node.Style.FlexGrow
		totalShrink += items[i].node.Style.FlexShrink * float64(items[i].base)
	}
	for i := range items {
		items[i].main = items[i].base
	}
	if mainSpec.Mode != Unspecified {
		free := mainSpec.Size - used
		switch {
		case free > 0 && totalGrow > 0:
			distribute(items, free, totalGrow, func(it *flexItem) float64 { return it.node.Style.FlexGrow })
		case free < 0 && totalShrink > 0:
			distribute(items, free, totalShrink, func(it *flexItem) float64 {
				return it.node.Style.FlexShrink * float64(it.base)
			})
		}
	}

	// Phase 3: min/max on the main axis, then cross sizes.
	for i := range items {
		child := items[i].node
		if isRow {
			items[i].main = clampAxis(items[i].main, child.Style.MinWidth, child.Style.MaxWidth, mainSpec.Owner())
		} else {
			items[i].main = clampAxis(items[i].main, child.Style.MinHeight, child.Style.MaxHeight, mainSpec.Owner())
		}
		items[i].cross = n.measureChild(child, isRow, ExactSpec(items[i].main), crossChildSpec(crossSpec, items[i]), ownerW, ownerH, false)
	}

	containerMain := 0
	for i := range items {
		containerMain += items[i].main + items[i].mainMargin
	}
	containerMain = mainSpec.Resolve(containerMain)
	if mainSpec.Mode == Exactly {
		containerMain = mainSpec.Size
	}

	containerCross := 0
	if crossSpec.Mode == Exactly {
		containerCross = crossSpec.Size
	} else {
		for i := range items {
			containerCross = max(containerCross, items[i].cross+items[i].crossMargin)
		}
		containerCross = crossSpec.Resolve(containerCross)
	}
	for i := range items {
		if items[i].stretch {
			items[i].cross = max(0, containerCross-items[i].crossMargin)
		}
	}

	var w, h int
	if isRow {
		w, h = containerMain+inner.Horizontal(), containerCross+inner.Vertical()
	} else {
		w, h = containerCross+inner.Horizontal(), containerMain+inner.Vertical()
	}
	if !layout {
		return w, h
	}

	// Phase 4: justify along the main axis.
	used = 0
	for i := range items {
		used += items[i].main + items[i].mainMargin
	}
	free := max(0, containerMain-used)
	offset := justifyOffset(style.JustifyContent, free, len(items))
	spacing := justifySpacing(style.JustifyContent, free, len(items))
	for i := range items {
		items[i].mainPos = offset
		offset += items[i].main + items[i].mainMargin + spacing
	}
	if style.Direction.IsReverse() {
		for i := range items {
			items[i].mainPos = containerMain - items[i].mainPos - items[i].main - items[i].mainMargin
		}
	}

	// Phase 5: cross alignment.
	for i := range items {
		align := style.alignFor(items[i].node.Style)
		items[i].crossPos = alignOffset(align, containerCross, items[i].cross+items[i].crossMargin)
	}

	// Phase 6: final geometry, recursing into children.
	for i := range items {
		child := items[i].node
		m := child.Style.Margin
		cw, ch := items[i].cross, items[i].main
		x, y := inner.Left+items[i].crossPos+m.Left, inner.Top+items[i].mainPos+m.Top
		if isRow {
			cw, ch = items[i].main, items[i].cross
			x, y = inner.Left+items[i].mainPos+m.Left, inner.Top+items[i].crossPos+m.Top
		}
		fw, fh := child.calculate(ExactSpec(cw), ExactSpec(ch), ownerOf(w, inner.Horizontal()), ownerOf(h, inner.Vertical()), true)
		child.x, child.y, child.width, child.height = x, y, fw, fh
		child.hasLayout = true
	}

	for _, child := range absolute {
		n.layoutAbsolute(child, w, h, inner)
	}
	return w, h
}

// measureChild measures child and returns its size on the main axis (or the
// cross axis when wantMain is false).
func (n *Node) measureChild(child *Node, isRow bool, mainSpec, crossSpec SizeSpec, ownerW, ownerH int, wantMain bool) int {
	ws, hs := crossSpec, mainSpec
	if isRow {
		ws, hs = mainSpec, crossSpec
	}
	cw, ch := child.calculate(ws, hs, ownerW, ownerH, false)
	if isRow == wantMain {
		return cw
	}
	return ch
}

func crossChildSpec(crossSpec SizeSpec, item flexItem) SizeSpec {
	switch {
	case crossSpec.Mode == Unspecified:
		return crossSpec
	case item.stretch && crossSpec.Mode == Exactly:
		return ExactSpec(crossSpec.Size - item.crossMargin)
	default:
		return AtMostSpec(crossSpec.Size - item.crossMargin)
	}
}

// distribute spreads free (positive or negative) across items by weight. The
// last weighted item takes the rounding remainder.
func distribute(items []flexItem, free int, total float64, weight func(*flexItem) float64) {
	last := -1
	for i := range items {
		if weight(&items[i]) > 0 {
			last = i
		}
	}
	remaining := free
	for i := range items {
		wgt := weight(&items[i])
		if wgt <= 0 {
			continue
		}
		delta := int(float64(free) * wgt / total)
		if i == last {
			delta = remaining
		}
		remaining -= delta
		items[i].main = max(0, items[i].base+delta)
	}
}

func clampAxis(v int, minV, maxV Value, owner int) int {
	lo, _ := minV.Resolve(owner)
	hi := -1
	if m, ok := maxV.Resolve(owner); ok {
		hi = m
	}
	return clamp(v, lo, hi)
}

func ownerOf(size, inset int) int {
	return max(0, size-inset)
}

func (n *Node) layoutAbsolute(child *Node, w, h int, inner graphics.Edges) {
	pos := child.Style.Position
	innerW, innerH := w-inner.Horizontal(), h-inner.Vertical()

	ws := AtMostSpec(innerW)
	hs := AtMostSpec(innerH)
	left, hasLeft := pos.Left.Resolve(innerW)
	right, hasRight := pos.Right.Resolve(innerW)
	top, hasTop := pos.Top.Resolve(innerH)
	bottom, hasBottom := pos.Bottom.Resolve(innerH)
	if hasLeft && hasRight && !child.Style.Width.IsDefined() {
		ws = ExactSpec(innerW - left - right - child.Style.Margin.Horizontal())
	}
	if hasTop && hasBottom && !child.Style.Height.IsDefined() {
		hs = ExactSpec(innerH - top - bottom - child.Style.Margin.Vertical())
	}
	cw, ch := child.calculate(ws, hs, innerW, innerH, false)
	cw, ch = child.calculate(ExactSpec(cw), ExactSpec(ch), innerW, innerH, true)

	x := inner.Left + child.Style.Margin.Left
	switch {
	case hasLeft:
		x += left
	case hasRight:
		x = w - inner.Right - right - cw - child.Style.Margin.Right
	}
	y := inner.Top + child.Style.Margin.Top
	switch {
	case hasTop:
		y += top
	case hasBottom:
		y = h - inner.Bottom - bottom - ch - child.Style.Margin.Bottom
	}
	child.x, child.y, child.width, child.height = x, y, cw, ch
	child.hasLayout = true
}

// justifyOffset returns the initial offset for positioning children.
func justifyOffset(justify Justify, free, count int) int {
	if free <= 0 || count == 0 {
		return 0
	}
	switch justify {
	case JustifyEnd:
		return free
	case JustifyCenter:
		return free / 2
	case JustifySpaceAround:
		return free / (count * 2)
	case JustifySpaceEvenly:
		return free / (count + 1)
	default:
		return 0
	}
}

// justifySpacing returns the extra spacing between children.
func justifySpacing(justify Justify, free, count int) int {
	if free <= 0 || count <= 1 && justify != JustifySpaceAround && justify != JustifySpaceEvenly {
		return 0
	}
	switch justify {
	case JustifySpaceBetween:
		return free / (count - 1)
	case JustifySpaceAround:
		return free / count
	case JustifySpaceEvenly:
		return free / (count + 1)
	default:
		return 0
	}
}

// alignOffset returns the offset for positioning a child on the cross axis.
func alignOffset(align Align, crossSize, itemSize int) int {
	switch align {
	case AlignEnd:
		return crossSize - itemSize
	case AlignCenter:
		return (crossSize - itemSize) / 2
	default:
		return 0
	}
}
