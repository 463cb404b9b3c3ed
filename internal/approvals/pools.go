package approvals

import (
	"procurement/pkg/models"
	"procurement/pkg/roles"
)

func Pool(users []models.Usuario, rank roles.Gerarquia) []models.Usuario {
	pool := []models.Usuario{}
	for _, u := range users {
		if u.Gerarquia() == int(rank) {
			pool = append(pool, u)
		}
	}
	return pool
}

func SupervisorPool(users []models.Usuario) []models.Usuario {
	return Pool(users, roles.Supervisor)
}

func ManagerPool(users []models.Usuario) []models.Usuario {
	return Pool(users, roles.Gerente)
}
