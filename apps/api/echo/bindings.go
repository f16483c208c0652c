package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-field`; a leading "-" sorts descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindListQuery binds the filter, page and ordering of a list endpoint.
// filter may be nil.
func bindListQuery(ctx echo.Context, filter interface{}) (core.PageRequest, []core.DBOrdering, error) {
	binder := new(echo.DefaultBinder)
	if filter != nil {
		if err := binder.BindQueryParams(ctx, filter); err != nil {
			return core.PageRequest{}, nil, err
		}
	}
	var page core.PageRequest
	if err := binder.BindQueryParams(ctx, &page); err != nil {
		return core.PageRequest{}, nil, err
	}
	page.Clean()

	ordering := new(Ordering)
	ordering.Bind(ctx)
	return page, ordering.Orderings, nil
}

// bindFilter binds the query params of an export endpoint.
func bindFilter(ctx echo.Context, filter interface{}) error {
	return new(echo.DefaultBinder).BindQueryParams(ctx, filter)
}

// paramID parses the `:id` path param; malformed ids are 404s.
func paramID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}
