// Package tasktree 任务森林的arena表示
// 节点放在扁平切片里，父子用下标引用，遍历全部用显式栈迭代，嵌套深度不受调用栈限制
package tasktree

import "github.com/firsthash/console/model"

// None 无父节点
const None = -1

// Node arena节点
type Node struct {
	Task     model.Task
	Parent   int
	Children []int
}

// Forest 任务森林
type Forest struct {
	nodes []Node
	roots []int
}

// BuildForest 两趟O(n)构建。第一趟建id索引，第二趟挂到父节点，父id缺失或悬空的按根处理
func BuildForest(tasks []model.Task) *Forest {
	f := &Forest{nodes: make([]Node, 0, len(tasks))}
	index := make(map[string]int, len(tasks))
	for _, t := range tasks {
		index[t.ID] = len(f.nodes)
		f.nodes = append(f.nodes, Node{Task: t, Parent: None})
	}
	for i := range f.nodes {
		pid := f.nodes[i].Task.ParentTaskID
		if pid == "" {
			f.roots = append(f.roots, i)
			continue
		}
		p, ok := index[pid]
		if !ok || p == i {
			f.roots = append(f.roots, i)
			continue
		}
		f.nodes[i].Parent = p
		f.nodes[p].Children = append(f.nodes[p].Children, i)
	}
	return f
}

// Len 节点数
func (f *Forest) Len() int {
	return len(f.nodes)
}

// Roots 根下标列表，返回拷贝
func (f *Forest) Roots() []int {
	out := make([]int, len(f.roots))
	copy(out, f.roots)
	return out
}

// Node 按下标取节点
func (f *Forest) Node(i int) Node {
	return f.nodes[i]
}

// Walk 先序迭代遍历，visit返回false时跳过该节点的子树
func (f *Forest) Walk(visit func(idx, depth int) bool) {
	type frame struct {
		idx   int
		depth int
	}
	stack := make([]frame, 0, len(f.nodes))
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{f.roots[i], 0})
	}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(fr.idx, fr.depth) {
			continue
		}
		children := f.nodes[fr.idx].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], fr.depth + 1})
		}
	}
}

// Flatten 先序展开为任务列表，重建该列表得到同构森林
func (f *Forest) Flatten() []model.Task {
	out := make([]model.Task, 0, len(f.nodes))
	f.Walk(func(idx, _ int) bool {
		out = append(out, f.nodes[idx].Task)
		return true
	})
	return out
}

// Filter 保留自身匹配或任一后代匹配的节点，匹配节点的祖先链完整保留
// 产生新森林，原森林不变
func (f *Forest) Filter(pred func(model.Task) bool) *Forest {
	keep := make([]bool, len(f.nodes))
	// 后序：子节点先于父节点判定
	type frame struct {
		idx     int
		visited bool
	}
	stack := make([]frame, 0, len(f.nodes))
	for i := len(f.roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{f.roots[i], false})
	}
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		if !fr.visited {
			fr.visited = true
			children := f.nodes[fr.idx].Children
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{children[i], false})
			}
			continue
		}
		idx := fr.idx
		stack = stack[:len(stack)-1]
		k := pred(f.nodes[idx].Task)
		if !k {
			for _, c := range f.nodes[idx].Children {
				if keep[c] {
					k = true
					break
				}
			}
		}
		keep[idx] = k
	}

	out := &Forest{}
	remap := make(map[int]int, len(f.nodes))
	f.Walk(func(idx, _ int) bool {
		if !keep[idx] {
			return false
		}
		ni := len(out.nodes)
		remap[idx] = ni
		node := Node{Task: f.nodes[idx].Task, Parent: None}
		if p := f.nodes[idx].Parent; p != None {
			if np, ok := remap[p]; ok {
				node.Parent = np
				out.nodes = append(out.nodes, node)
				out.nodes[np].Children = append(out.nodes[np].Children, ni)
				return true
			}
		}
		out.nodes = append(out.nodes, node)
		out.roots = append(out.roots, ni)
		return true
	})
	return out
}

// PageRoots 仅对根列表分页，page从1起；子树展开时始终完整
func (f *Forest) PageRoots(page, size int) []int {
	if page < 1 || size < 1 {
		return f.Roots()
	}
	start := (page - 1) * size
	if start >= len(f.roots) {
		return []int{}
	}
	end := start + size
	if end > len(f.roots) {
		end = len(f.roots)
	}
	out := make([]int, end-start)
	copy(out, f.roots[start:end])
	return out
}
