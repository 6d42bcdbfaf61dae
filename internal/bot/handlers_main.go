package bot

import (
	"ledgerbot/internal/menu"
)

func (r *Router) registerMain() {
	r.Register(menu.OpMainMenu, r.showMain)
	r.Register(menu.OpStatistics, r.showStatistics)
	r.Register(menu.OpCalendarIgnore, func(*turn, menu.Action) error { return nil })
}

func (r *Router) showMain(t *turn, _ menu.Action) error {
	t.show(r.render.Main())
	return nil
}

func (r *Router) showStatistics(t *turn, _ menu.Action) error {
	sum, err := r.stats.Summary(t.ctx, t.sess, t.u.UserID)
	if err != nil {
		return err
	}
	t.show(r.render.Statistics(sum))
	return nil
}
