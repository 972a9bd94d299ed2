package regression

import (
	"encoding/gob"

	"github.com/wellsync/wellsync-ai/core/model"
)

func init() {
	gob.Register(&Ridge{})
	gob.Register(&Lasso{})
	gob.Register(&ElasticNet{})
	gob.Register(&DecisionTreeRegressor{})
	gob.Register(&RandomForestRegressor{})
	gob.Register(&ExtraTreesRegressor{})
	gob.Register(&GradientBoostingRegressor{})
	gob.Register(&AdaBoostRegressor{})
	gob.Register(&KNNRegressor{})
	gob.Register(&VotingRegressor{})
	gob.Register(&StackingRegressor{})
}

// Envelope wraps a fitted model for persistence so the concrete type
// survives the gob round trip behind the Regressor interface.
type Envelope struct {
	Algorithm string
	Model     model.Regressor
}

// SaveRegressor persists a fitted model with its algorithm name.
func SaveRegressor(r model.Regressor, filename string) error {
	return model.SaveModel(&Envelope{Algorithm: r.Name(), Model: r}, filename)
}

// LoadRegressor restores a persisted model.
func LoadRegressor(filename string) (model.Regressor, error) {
	var env Envelope
	if err := model.LoadModel(&env, filename); err != nil {
		return nil, err
	}
	return env.Model, nil
}
