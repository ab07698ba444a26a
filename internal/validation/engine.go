package validation

import (
	"context"
	"fmt"

	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/vec"
)

// Engine проверяет карту по правилам поля:
//   - каждая клетка кирпича лежит внутри границ из метаданных;
//   - никакие два кирпича не делят клетку;
//   - каждый кирпич связан с пластиной через шипы (сверху или снизу);
//   - у кирпича есть геометрия.
type Engine struct{}

// NewEngine создаёт валидатор
func NewEngine() *Engine {
	return &Engine{}
}

type placedBrick struct {
	index int
	cells []vec.Vec3
}

// Validate проверяет карту. Ошибка возвращается только при отмене контекста;
// нарушения правил описываются в Result.
func (e *Engine) Validate(ctx context.Context, m mapformat.Map) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	bounds := m.Metadata.Bounds()
	res := Result{Errors: []Error{}}

	var bricks []placedBrick
	outside := make(map[int]bool)

	for i, sb := range m.Bricks {
		cells, ok := sb.Cells()
		if !ok || len(cells) == 0 {
			res.Errors = append(res.Errors, Error{
				Type:            ErrorEmptyBrick,
				Message:         fmt.Sprintf("brick %d (%s) has no cells", i, sb.Name),
				OffendingBricks: []int{i},
			})
			continue
		}

		for _, c := range cells {
			if !bounds.Contains(c) {
				outside[i] = true
				res.Errors = append(res.Errors, Error{
					Type:            ErrorOutOfBounds,
					Message:         fmt.Sprintf("brick %d (%s) leaves the %dx%dx%d field at %v", i, sb.Name, bounds.Width, bounds.Height, bounds.Depth, c),
					OffendingBricks: []int{i},
				})
				break
			}
		}
		bricks = append(bricks, placedBrick{index: i, cells: cells})
	}

	res.Errors = append(res.Errors, overlaps(bricks, m)...)
	res.Errors = append(res.Errors, floating(bricks, outside, m, bounds.Width, bounds.Depth)...)

	res.Valid = len(res.Errors) == 0
	return res, nil
}

// overlaps возвращает по одной ошибке на каждую пару кирпичей с общей клеткой
func overlaps(bricks []placedBrick, m mapformat.Map) []Error {
	var errs []Error
	owner := make(map[vec.Vec3]int)
	reported := make(map[[2]int]bool)

	for _, b := range bricks {
		for _, c := range b.cells {
			other, taken := owner[c]
			if !taken {
				owner[c] = b.index
				continue
			}
			if other == b.index {
				continue
			}
			pair := [2]int{other, b.index}
			if reported[pair] {
				continue
			}
			reported[pair] = true
			errs = append(errs, Error{
				Type:            ErrorOverlap,
				Message:         fmt.Sprintf("bricks %d (%s) and %d (%s) share cell %v", other, m.Bricks[other].Name, b.index, m.Bricks[b.index].Name, c),
				OffendingBricks: []int{other, b.index},
			})
		}
	}
	return errs
}

// floating ищет кирпичи, не связанные с пластиной. Связью считается вертикальное
// соседство клеток (шипы снизу или сверху). Кирпичи за границами поля
// здесь не учитываются: для них уже есть ошибка out_of_bounds.
func floating(bricks []placedBrick, outside map[int]bool, m mapformat.Map, width, depth int) []Error {
	occupants := make(map[vec.Vec3][]int)
	for pos, b := range bricks {
		for _, c := range b.cells {
			occupants[c] = append(occupants[c], pos)
		}
	}

	grounded := make([]bool, len(bricks))
	queue := make([]int, 0, len(bricks))
	for pos, b := range bricks {
		for _, c := range b.cells {
			if c.Y == 0 && c.X >= 0 && c.X < width && c.Z >= 0 && c.Z < depth {
				grounded[pos] = true
				queue = append(queue, pos)
				break
			}
		}
	}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]
		for _, c := range bricks[pos].cells {
			for _, n := range [2]vec.Vec3{c.Above(), c.Below()} {
				for _, next := range occupants[n] {
					if !grounded[next] {
						grounded[next] = true
						queue = append(queue, next)
					}
				}
			}
		}
	}

	var errs []Error
	for pos, b := range bricks {
		if grounded[pos] || outside[b.index] {
			continue
		}
		errs = append(errs, Error{
			Type:            ErrorFloating,
			Message:         fmt.Sprintf("brick %d (%s) is not connected to the baseplate", b.index, m.Bricks[b.index].Name),
			OffendingBricks: []int{b.index},
		})
	}
	return errs
}
