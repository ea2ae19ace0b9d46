package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

// ProjectsHandler lista os projetos do usuário (GET) e cria um novo (POST)
func (a *App) ProjectsHandler(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var form ProjectForm
	errs := FieldErrors{}
	status := http.StatusOK

	if r.Method == http.MethodPost {
		var err error
		if errs, err = decodeForm(r, &form); err != nil {
			utilities.LogError(err, "ProjectsHandler: corpo da requisição inválido")
			a.renderError(w, r, http.StatusBadRequest)
			return
		}
		if errs.Empty() {
			errs = form.Validate()
		}

		if errs.Empty() {
			project := &models.Project{Name: form.Name, Description: form.Description, OwnerID: user.ID}
			if err := a.Store.CreateProject(r.Context(), project); err != nil {
				a.serverError(w, r, err, "ProjectsHandler: erro ao criar projeto")
				return
			}
			utilities.LogInfo("Projeto %d criado pelo usuário %d", project.ID, user.ID)
			setFlash(w, "success", "Project created successfully!")
			http.Redirect(w, r, "/projects", http.StatusSeeOther)
			return
		}
		status = http.StatusUnprocessableEntity
	}

	projects, err := a.Store.ListProjectsByOwner(r.Context(), user.ID)
	if err != nil {
		a.serverError(w, r, err, "ProjectsHandler: erro ao listar projetos")
		return
	}

	a.render(w, r, status, "projects.html", &pageData{
		Title:    "Projects",
		Form:     form,
		Errors:   errs,
		Projects: projects,
	})
}

// ProjectHandler exibe o formulário de edição (GET) e salva as alterações (POST)
func (a *App) ProjectHandler(w http.ResponseWriter, r *http.Request) {
	project, ok := a.loadOwnedProject(w, r)
	if !ok {
		return
	}

	form := ProjectForm{Name: project.Name, Description: project.Description}
	if r.Method != http.MethodPost {
		a.render(w, r, http.StatusOK, "project.html", &pageData{Title: "Edit Project", Form: form, Project: project})
		return
	}

	errs, err := decodeForm(r, &form)
	if err != nil {
		utilities.LogError(err, "ProjectHandler: corpo da requisição inválido")
		a.renderError(w, r, http.StatusBadRequest)
		return
	}
	if errs.Empty() {
		errs = form.Validate()
	}
	if !errs.Empty() {
		a.render(w, r, http.StatusUnprocessableEntity, "project.html", &pageData{
			Title:   "Edit Project",
			Form:    form,
			Errors:  errs,
			Project: project,
		})
		return
	}

	project.Name = form.Name
	project.Description = form.Description
	if err := a.Store.UpdateProject(r.Context(), project); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			a.renderError(w, r, http.StatusNotFound)
			return
		}
		a.serverError(w, r, err, "ProjectHandler: erro ao atualizar projeto")
		return
	}

	utilities.LogInfo("Projeto %d atualizado", project.ID)
	setFlash(w, "success", "Project updated successfully!")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// DeleteProjectHandler apaga o projeto e, em cascata, as tarefas dele
func (a *App) DeleteProjectHandler(w http.ResponseWriter, r *http.Request) {
	project, ok := a.loadOwnedProject(w, r)
	if !ok {
		return
	}

	if err := a.Store.DeleteProject(r.Context(), project.ID); err != nil && !errors.Is(err, models.ErrNotFound) {
		a.serverError(w, r, err, fmt.Sprintf("DeleteProjectHandler: erro ao apagar projeto %d", project.ID))
		return
	}

	utilities.LogInfo("Projeto %d apagado", project.ID)
	setFlash(w, "success", "Project deleted successfully!")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}
