package task

import "slices"

// Order возвращает задачи в порядке отображения: сначала невыполненные,
// внутри группы по приоритету. Сортировка стабильная, исходный слайс не меняется.
func Order(tasks []*Task) []*Task {
	ordered := slices.Clone(tasks)
	slices.SortStableFunc(ordered, func(a, b *Task) int {
		if a.Completed != b.Completed {
			if a.Completed {
				return 1
			}
			return -1
		}
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return ordered
}
