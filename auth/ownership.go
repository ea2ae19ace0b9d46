package auth

import "github.com/kot-brodskogo/task-manager-system/models"

// CanAccessProject: apenas o dono vê, edita ou apaga o projeto.
func CanAccessProject(p *models.Project, u *models.User) bool {
	return p != nil && u != nil && p.OwnerID == u.ID
}

// CanModifyTask libera a tarefa para quem a criou e para o dono do projeto
// ao qual ela pertence.
func CanModifyTask(t *models.Task, u *models.User) bool {
	if t == nil || u == nil {
		return false
	}
	return t.CreatorID == u.ID || t.ProjectOwnerID == u.ID
}
