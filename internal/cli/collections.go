package cli

import (
	"context"
	"sort"

	"adminconsole/internal/engine/query"
	"adminconsole/internal/engine/resources"
	"adminconsole/internal/engine/view"
	"adminconsole/internal/platform/config"
	"adminconsole/internal/platform/models"
)

// collection is one entity collection with its rows already presented.
type collection struct {
	list  func(ctx context.Context, q models.ListQuery) (models.Page[any], error)
	get   func(ctx context.Context, id string) (any, error)
	watch func(ctx context.Context, q models.ListQuery, emit func(models.Page[any], error))
}

func collectionOf[T models.Entity, C, U any](e *query.Engine, res resources.Resource[T, C, U], present func(T) any) collection {
	if present == nil {
		present = func(v T) any { return v }
	}
	return collection{
		list: func(ctx context.Context, q models.ListQuery) (models.Page[any], error) {
			page, err := query.Query(ctx, e, res.List, q)
			if err != nil {
				return models.Page[any]{}, err
			}
			return view.Rows(page, present), nil
		},
		get: func(ctx context.Context, id string) (any, error) {
			item, err := query.Query(ctx, e, res.Get, id)
			if err != nil {
				return nil, err
			}
			return present(item), nil
		},
		watch: func(ctx context.Context, q models.ListQuery, emit func(models.Page[any], error)) {
			sub := query.Subscribe(ctx, e, res.List, q)
			defer sub.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case r, ok := <-sub.Updates():
					if !ok {
						return
					}
					emit(view.Rows(r.Value, present), r.Err)
				}
			}
		},
	}
}

func collections(a *App) map[string]collection {
	c := a.Catalog
	e := a.Engine
	currency := a.Config.Backend.Currency
	return map[string]collection{
		c.Organizations.Name:  collectionOf(e, c.Organizations, func(o models.Organization) any { return view.Organization(o) }),
		c.Users.Name:          collectionOf(e, c.Users, func(u models.User) any { return view.User(u, currency) }),
		c.Payments.Name:       collectionOf(e, c.Payments, func(p models.Payment) any { return view.Payment(p) }),
		c.Plans.Name:          collectionOf(e, c.Plans, nil),
		c.Contacts.Name:       collectionOf(e, c.Contacts, nil),
		c.Categories.Name:     collectionOf(e, c.Categories, nil),
		c.Templates.Name:      collectionOf(e, c.Templates, nil),
		c.SupportTickets.Name: collectionOf(e, c.SupportTickets, nil),
		c.Assets.Name:         collectionOf(e, c.Assets, nil),
		c.Tasks.Name:          collectionOf(e, c.Tasks, func(t models.Task) any { return view.Task(t) }),
		c.Logs.Name:           collectionOf(e, c.Logs, nil),
		c.EmailLogs.Name:      collectionOf(e, c.EmailLogs, nil),
	}
}

// CollectionNames lists the names accepted by list, get and watch.
func CollectionNames() []string {
	names := make([]string, 0, 12)
	for name := range collections(&App{Config: &config.Config{}, Catalog: resources.NewCatalog("")}) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
