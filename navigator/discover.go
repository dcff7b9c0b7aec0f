package navigator

import "github.com/tsawler/cellgrid/model"

// Discover walks every cell reachable from start through moves in all four
// directions and returns them in breadth-first order. The walk keeps a
// visited set, so merged cells reached along several paths appear once.
//
// If more than maxCells distinct cells exist the walk stops and returns the
// cells found so far with a *CapError. A maxCells of zero or less disables
// the cap.
func (n *Navigator) Discover(start model.Handle, maxCells int) ([]model.Handle, error) {
	restore := n.Save()
	defer restore()

	visited := map[model.Handle]bool{start: true}
	order := []model.Handle{start}
	queue := []model.Handle{start}

	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		for _, d := range Directions {
			next := n.Move(h, d)
			if next == h || visited[next] {
				continue
			}
			if maxCells > 0 && len(order) >= maxCells {
				err := &CapError{Stage: "discover", Limit: maxCells, Visited: len(order)}
				n.Warn(model.WarningTraversalCap, "discover", next, err.Error())
				return order, err
			}
			visited[next] = true
			order = append(order, next)
			queue = append(queue, next)
		}
	}

	n.logger.Debug("discovered cells", "count", len(order), "start", int(start))
	return order, nil
}
